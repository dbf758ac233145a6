package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fekuna/storefront-service/config"
	"github.com/fekuna/storefront-service/internal/apperror"
	catDTO "github.com/fekuna/storefront-service/internal/category/dto"
	catRepoPkg "github.com/fekuna/storefront-service/internal/category/repository"
	catUCPkg "github.com/fekuna/storefront-service/internal/category/usecase"
	discDTO "github.com/fekuna/storefront-service/internal/discount/dto"
	discRepoPkg "github.com/fekuna/storefront-service/internal/discount/repository"
	discUCPkg "github.com/fekuna/storefront-service/internal/discount/usecase"
	prodDTO "github.com/fekuna/storefront-service/internal/product/dto"
	prodRepoPkg "github.com/fekuna/storefront-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/storefront-service/internal/product/usecase"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	category string
	name     string
	price    string
	stock    int
	featured bool
	discount int64
}

var seedCategories = []catDTO.CreateCategoryInput{
	{Name: "Kitchen", Description: "Cookware and tableware", SortOrder: 1},
	{Name: "Home", Description: "Decor and lighting", SortOrder: 2},
	{Name: "Outdoor", Description: "Garden and camping", SortOrder: 3},
}

var seedProducts = []seedProduct{
	{"Kitchen", "Stoneware Mug", "12.50", 40, true, 0},
	{"Kitchen", "Cast Iron Skillet", "49.00", 15, false, 10},
	{"Kitchen", "Linen Tea Towel", "8.00", 60, false, 0},
	{"Home", "Brass Desk Lamp", "89.00", 8, true, 0},
	{"Home", "Wool Throw", "65.00", 12, false, 15},
	{"Outdoor", "Enamel Camp Kettle", "34.00", 20, false, 0},
	{"Outdoor", "Folding Lantern", "22.00", 4, true, 0},
}

var seedDiscounts = []discDTO.CreateDiscountInput{
	{Code: "WELCOME10", Percentage: decimal.NewFromInt(10)},
	{Code: "SAVE20", Percentage: decimal.NewFromInt(20)},
}

func seed(cfg *config.Config) {
	ctx := context.Background()
	db := openDB(cfg)
	defer db.Close()

	nop := logger.NewNop()
	catRepo := catRepoPkg.NewPGRepository(db)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, nop)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, nil, nil, cfg.Redis.CacheTTL, nop)
	discUC := discUCPkg.NewDiscountUseCase(discRepoPkg.NewPGRepository(db), time.Now, nop)

	categoryIDs := map[string]string{}
	for _, in := range seedCategories {
		in := in
		c, err := catUC.CreateCategory(ctx, &in)
		if apperror.Is(err, apperror.KindConflict) {
			c, err = catRepo.FindByName(ctx, in.Name)
		}
		if err != nil || c == nil {
			log.Fatalf("Failed to seed category %s: %v", in.Name, err)
		}
		categoryIDs[in.Name] = c.ID
	}
	fmt.Printf("Categories ready: %d\n", len(categoryIDs))

	_, count, err := prodRepo.FindAll(ctx, &prodDTO.ProductFilters{Page: 1, PageSize: 1})
	if err != nil {
		log.Fatalf("Failed to count products: %v", err)
	}
	if count > 0 {
		fmt.Printf("Catalog already has %d products, skipping products.\n", count)
	} else {
		for _, sp := range seedProducts {
			_, err := prodUC.CreateProduct(ctx, &prodDTO.CreateProductInput{
				CategoryID:         categoryIDs[sp.category],
				Name:               sp.name,
				Price:              decimal.RequireFromString(sp.price),
				Stock:              sp.stock,
				IsFeatured:         sp.featured,
				IsSpecialOffer:     sp.discount > 0,
				DiscountPercentage: decimal.NewFromInt(sp.discount),
			})
			if err != nil {
				log.Fatalf("Failed to seed product %s: %v", sp.name, err)
			}
		}
		fmt.Printf("Products created: %d\n", len(seedProducts))
	}

	for _, in := range seedDiscounts {
		in := in
		if _, err := discUC.CreateDiscount(ctx, &in); err != nil && !apperror.Is(err, apperror.KindConflict) {
			log.Fatalf("Failed to seed discount %s: %v", in.Code, err)
		}
	}
	fmt.Printf("Discount codes ready: %d\n", len(seedDiscounts))
}
