package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/pawsomemeals/storefront/internal/models"
)

const ProductIndex = "products"

// Service wraps catalog search and index maintenance. A nil Service is
// valid: search returns empty results and indexing is a no-op, so the
// server runs without Elasticsearch configured.
type Service struct {
	ES    *elasticsearch.Client
	Index string
}

func NewService(client *elasticsearch.Client) *Service {
	if client == nil {
		return nil
	}
	return &Service{ES: client, Index: ProductIndex}
}

// Search runs a fuzzy multi_match over product name and description,
// with name weighted double.
func (s *Service) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if s == nil {
		return 0, nil, nil
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description", "protein"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), raw)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 }             `json:"total"`
			Hits  []struct{ Source models.Product } `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	products := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		products[i] = hit.Source
	}
	return r.Hits.Total.Value, products, nil
}

// IndexProduct writes or overwrites the product document.
func (s *Service) IndexProduct(ctx context.Context, product *models.Product) error {
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product doc: %w", err)
	}
	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(payload),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(product.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", product.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %d: %s", product.ID, res.Status())
	}
	return nil
}

// DeleteProduct removes the product document. A missing document is
// not an error.
func (s *Service) DeleteProduct(ctx context.Context, productID uint) error {
	if s == nil {
		return nil
	}
	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(productID), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete product doc %d: %w", productID, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product doc %d: %s", productID, res.Status())
	}
	return nil
}
