package orders

import (
	"time"

	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/shopspring/decimal"
)

// Display fallbacks for records with missing or malformed fields. A bad
// item never fails the whole batch; it renders with placeholders.
const (
	PlaceholderName = "item unavailable"
)

// DecodeOrder maps one persisted record to an Order value. This is the
// single place where the missing-field policy lives: a missing item name
// or price becomes a placeholder, a missing total is recomputed from the
// items, a missing date sorts last.
func DecodeOrder(doc docstore.Document) domain.Order {
	order := domain.Order{
		ID:     stringField(doc, "id"),
		UserID: stringField(doc, "user_id"),
	}

	if raw, ok := doc["created_at"]; ok {
		if t, ok := raw.(time.Time); ok {
			order.CreatedAt = t
		}
	}

	if rawItems, ok := itemSlice(doc["items"]); ok {
		order.Items = make([]domain.OrderItem, 0, len(rawItems))
		for _, rawItem := range rawItems {
			item, ok := asDocument(rawItem)
			if !ok {
				order.Items = append(order.Items, domain.OrderItem{
					Name:     PlaceholderName,
					Quantity: 1,
				})
				continue
			}
			order.Items = append(order.Items, decodeItem(item))
		}
	}

	if total, ok := decimalField(doc, "total"); ok {
		order.Total = total
	} else {
		for _, item := range order.Items {
			order.Total = order.Total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	return order
}

func decodeItem(item docstore.Document) domain.OrderItem {
	out := domain.OrderItem{Quantity: 1}

	if name := stringField(item, "name"); name != "" {
		out.Name = name
	} else {
		out.Name = PlaceholderName
	}

	if price, ok := decimalField(item, "unit_price"); ok {
		out.UnitPrice = price
	}

	if qty, ok := intField(item, "quantity"); ok && qty >= 1 {
		out.Quantity = qty
	}

	return out
}

func itemSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []docstore.Document:
		out := make([]any, len(t))
		for i, d := range t {
			out[i] = d
		}
		return out, true
	default:
		return nil, false
	}
}

func asDocument(v any) (docstore.Document, bool) {
	switch t := v.(type) {
	case docstore.Document:
		return t, true
	case map[string]any:
		return t, true
	default:
		return nil, false
	}
}

func stringField(doc docstore.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func intField(doc docstore.Document, key string) (int, bool) {
	switch v := doc[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// decimalField accepts the price encodings seen in the wild: canonical
// strings written by this client plus numbers written by older ones.
func decimalField(doc docstore.Document, key string) (decimal.Decimal, bool) {
	switch v := doc[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	default:
		return decimal.Zero, false
	}
}
