// cmd/seed loads demo categories, shops, opening hours and products.
// Usage: go run ./cmd/seed [-shops 50]
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"shopapp/internal/config"
	"shopapp/internal/dto"
	"shopapp/internal/infra"
	"shopapp/internal/repository"
	"shopapp/internal/search"
	"shopapp/internal/service"
	"shopapp/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	categoryNames = []string{"Bakery", "Dairy", "Produce", "Drinks", "Household", "Organic"}
	shopWords     = []string{"Corner", "Market", "Fresh", "Village", "Urban", "Daily", "Green", "Harbor"}
	shopKinds     = []string{"Bakery", "Grocery", "Deli", "Store", "Pantry", "Shop"}
	productNames  = []string{"Bread", "Milk", "Apples", "Coffee", "Soap", "Cheese", "Juice", "Rice"}
)

func main() {
	shops := flag.Int("shops", 30, "number of shops to create")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	ctx := context.Background()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	index, closeIndex, err := search.Open(ctx, cfg, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open search index")
	}
	defer func() { _ = closeIndex(context.Background()) }()

	shopRepo := repository.NewShopRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	indexer := worker.NewMassIndexer(shopRepo, index, cfg.ReindexWorkers, cfg.ReindexBatchSize)
	shopSvc := service.NewShopService(shopRepo, index, indexer, nil, nil, 0)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(repository.NewProductRepository(db), categoryRepo, shopRepo, shopSvc)

	categoryIDs := make([]uint, 0, len(categoryNames))
	for _, name := range categoryNames {
		c, err := categorySvc.Create(ctx, dto.CrearCategoryRequest{Name: name})
		if err != nil {
			// already seeded
			existing, findErr := categoryRepo.FindByName(ctx, name)
			if findErr != nil {
				log.Fatal().Err(err).Str("category", name).Msg("seed category")
			}
			categoryIDs = append(categoryIDs, existing.ID)
			continue
		}
		categoryIDs = append(categoryIDs, c.ID)
	}

	rng := rand.New(rand.NewSource(42))
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < *shops; i++ {
		req := dto.CrearShopRequest{
			Name:         fmt.Sprintf("%s %s %d", shopWords[rng.Intn(len(shopWords))], shopKinds[rng.Intn(len(shopKinds))], i+1),
			CreatedAt:    start.AddDate(0, 0, rng.Intn(1000)).Format("2006-01-02"),
			InVacations:  rng.Intn(5) == 0,
			OpeningHours: weekHours(rng),
		}
		shop, err := shopSvc.Create(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("shop", req.Name).Msg("seed shop")
		}

		products := rng.Intn(6)
		for p := 0; p < products; p++ {
			cats := []uint{categoryIDs[rng.Intn(len(categoryIDs))], categoryIDs[rng.Intn(len(categoryIDs))]}
			_, err := productSvc.Create(ctx, dto.CrearProductRequest{
				Name:        productNames[rng.Intn(len(productNames))],
				Price:       decimal.NewFromInt(int64(50 + rng.Intn(2000))).Shift(-2),
				ShopID:      &shop.ID,
				CategoryIDs: cats,
			})
			if err != nil {
				log.Fatal().Err(err).Uint("shop_id", shop.ID).Msg("seed product")
			}
		}
	}
	log.Info().Int("shops", *shops).Int("categories", len(categoryIDs)).Msg("seed done")
}

// weekHours opens Monday to Saturday with a lunch break on some days.
func weekHours(rng *rand.Rand) []dto.OpeningHoursRequest {
	hours := make([]dto.OpeningHoursRequest, 0, 9)
	for day := 1; day <= 6; day++ {
		if rng.Intn(3) == 0 {
			hours = append(hours,
				dto.OpeningHoursRequest{Day: day, OpenAt: "09:00", CloseAt: "12:30"},
				dto.OpeningHoursRequest{Day: day, OpenAt: "14:00", CloseAt: "19:00"},
			)
			continue
		}
		hours = append(hours, dto.OpeningHoursRequest{Day: day, OpenAt: "08:00", CloseAt: "18:00"})
	}
	return hours
}
