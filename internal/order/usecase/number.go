package usecase

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Ambiguous glyphs (0/O, 1/I) are left out so numbers survive being read
// over the phone.
const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const numberSuffixLen = 4

// newOrderNumber returns <prefix>-<base36 unix millis>-<4 random chars>.
func newOrderNumber(prefix string, now time.Time) (string, error) {
	max := big.NewInt(int64(len(numberAlphabet)))
	suffix := make([]byte, numberSuffixLen)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = numberAlphabet[n.Int64()]
	}

	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return prefix + "-" + stamp + "-" + string(suffix), nil
}
