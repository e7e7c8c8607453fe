package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/mkuznec/pizza_orders/internal/models"
)

func IndexOrder(ctx context.Context, es *elasticsearch.Client, index string, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("index order: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(order.ID), 10)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index order: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index order: %s", res.Status())
	}
	return nil
}

func DeleteOrder(ctx context.Context, es *elasticsearch.Client, index string, orderID uint) error {
	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(orderID), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete order doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete order doc: %s", res.Status())
	}
	return nil
}

func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Order, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"flavour^2", "size", "order_status"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search orders: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search orders: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search orders: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Order `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		orders[i] = hit.Source
	}
	return r.Hits.Total.Value, orders, nil
}
