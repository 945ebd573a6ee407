package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
)

// LooseTimeLayout - формат даты без часового пояса, который встречается в OSDR.
const LooseTimeLayout = "2006-01-02 15:04:05"

// DatasetFields - списки полей-кандидатов для записи OSDR.
// Порядок важен: берется первое непустое значение.
type DatasetFields struct {
	Key       []string
	Title     []string
	Status    []string
	UpdatedAt []string
}

func DefaultDatasetFields() DatasetFields {
	return DatasetFields{
		Key:       []string{"dataset_id", "id", "uuid", "studyId", "accession", "osdr_id"},
		Title:     []string{"title", "name", "label"},
		Status:    []string{"status", "state", "lifecycle"},
		UpdatedAt: []string{"updated", "updated_at", "modified", "lastUpdated", "timestamp"},
	}
}

// Accessor достает одно значение из документа.
type Accessor func(doc map[string]interface{}) (string, bool)

// StringAccessors строит цепочку аксессоров по именам полей.
func StringAccessors(keys []string) []Accessor {
	accessors := make([]Accessor, 0, len(keys))
	for _, key := range keys {
		accessors = append(accessors, func(doc map[string]interface{}) (string, bool) {
			return stringValue(doc[key])
		})
	}
	return accessors
}

// FirstString возвращает первое успешное значение из цепочки.
func FirstString(doc map[string]interface{}, accessors []Accessor) *string {
	for _, access := range accessors {
		if s, ok := access(doc); ok {
			return &s
		}
	}
	return nil
}

// PickString - первое непустое строковое (или числовое) значение по списку ключей.
func PickString(doc map[string]interface{}, keys []string) *string {
	return FirstString(doc, StringAccessors(keys))
}

// PickTime перебирает ключи и пытается разобрать RFC3339, LooseTimeLayout
// и unix-время в секундах. Первый удачный разбор выигрывает.
func PickTime(doc map[string]interface{}, keys []string) *time.Time {
	for _, key := range keys {
		val, ok := doc[key]
		if !ok || val == nil {
			continue
		}
		if t, ok := parseTime(val); ok {
			return &t
		}
	}
	return nil
}

func parseTime(val interface{}) (time.Time, bool) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), true
		}
		if t, err := time.Parse(LooseTimeLayout, s); err == nil {
			return t.UTC(), true
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(n, 0).UTC(), true
		}
	case float64:
		if v == math.Trunc(v) {
			return time.Unix(int64(v), 0).UTC(), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return time.Unix(n, 0).UTC(), true
		}
	case int:
		return time.Unix(int64(v), 0).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	}
	return time.Time{}, false
}

// PickFloat - числовое значение поля. Строки с числом тоже принимаются.
// Отсутствие или нечисловое значение дает nil.
func PickFloat(doc map[string]interface{}, key string) *float64 {
	val, ok := doc[key]
	if !ok || val == nil {
		return nil
	}
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParsePosition разбирает документ с координатами МКС.
// Поддерживает плоский вид {timestamp, latitude, longitude}
// и вид open-notify, где координаты лежат в iss_position.
func ParsePosition(doc map[string]interface{}) (*models.Position, error) {
	coords := doc
	if nested, ok := doc["iss_position"].(map[string]interface{}); ok {
		coords = nested
	}

	lat := PickFloat(coords, "latitude")
	lon := PickFloat(coords, "longitude")
	ts := PickFloat(doc, "timestamp")
	if lat == nil || lon == nil || ts == nil {
		return nil, fmt.Errorf("%w: position requires timestamp, latitude and longitude", apperr.ErrDecode)
	}

	return &models.Position{
		Timestamp: int64(*ts),
		Latitude:  *lat,
		Longitude: *lon,
	}, nil
}

func stringValue(val interface{}) (string, bool) {
	switch v := val.(type) {
	case string:
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}
