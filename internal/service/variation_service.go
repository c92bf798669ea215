package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/site-generator-api/internal/cache"
	"github.com/site-generator-api/internal/models"
)

// variationService is the concrete implementation of VariationService
type variationService struct {
	cache         *cache.ContentCache
	maxVariations int
	log           zerolog.Logger
}

// newVariationService creates a new VariationService
func newVariationService(contentCache *cache.ContentCache, maxVariations int, log zerolog.Logger) *variationService {
	return &variationService{
		cache:         contentCache,
		maxVariations: maxVariations,
		log:           log.With().Str("service", "variation").Logger(),
	}
}

// Generate fans out N independent generations for one instruction. Nothing is
// persisted; a client keeps a draft by calling create separately.
//
// The batch is best-effort: variations generate concurrently, failed ones are
// dropped and logged, and the result reports requested vs returned counts.
// Only when every variation fails does the call return an error.
func (s *variationService) Generate(ctx context.Context, req *models.VariationRequest) (*models.VariationResult, error) {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return nil, &ValidationError{Field: "instruction", Message: "instruction is required"}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "general"
	}

	count := req.Count
	if count < 1 {
		count = 1
	}
	if count > s.maxVariations {
		count = s.maxVariations
	}

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		variations []models.Variation
		firstErr   error
	)

	for i := 1; i <= count; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			// Each variation gets a distinguishing marker so the batch
			// never collapses onto one cache entry or onto a prior plain
			// create with the same brief
			varied := fmt.Sprintf("%s\n\nVariation %d of %d: take a distinct visual and structural direction.",
				instruction, index, count)

			content, err := s.cache.GetOrGenerate(ctx, varied, contentType)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				s.log.Warn().Err(err).Int("variation_index", index).Msg("Variation generation failed")
				return
			}
			variations = append(variations, models.Variation{VariationIndex: index, Content: content})
		}(i)
	}
	wg.Wait()

	if len(variations) == 0 && firstErr != nil {
		return nil, wrapGeneration(firstErr)
	}

	sort.Slice(variations, func(i, j int) bool {
		return variations[i].VariationIndex < variations[j].VariationIndex
	})

	return &models.VariationResult{
		Requested:  count,
		Returned:   len(variations),
		Variations: variations,
	}, nil
}
