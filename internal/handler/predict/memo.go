package predict

import (
	"encoding/binary"
	"math"

	"github.com/getaround-ml/pricing-inference/internal/model"
	"github.com/getaround-ml/pricing-inference/pkg/inmemorycache"
	"github.com/spaolacci/murmur3"
)

// Memo is an optional read-through cache of row -> prediction. The bundle is
// immutable for the process lifetime, so identical rows always price the
// same and entries only expire by TTL.
type Memo struct {
	cache  inmemorycache.InMemoryCache
	ttlSec int
}

func NewMemo(cache inmemorycache.InMemoryCache, ttlSec int) *Memo {
	if cache == nil {
		return nil
	}
	return &Memo{cache: cache, ttlSec: ttlSec}
}

func (m *Memo) Get(row []model.FeatureValue) (float64, bool) {
	value, err := m.cache.Get(rowKey(row))
	if err != nil || len(value) != 8 {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(value)), true
}

func (m *Memo) Put(row []model.FeatureValue, prediction float64) {
	value := make([]byte, 8)
	binary.LittleEndian.PutUint64(value, math.Float64bits(prediction))
	if m.ttlSec > 0 {
		m.cache.SetEx(rowKey(row), value, m.ttlSec)
	} else {
		m.cache.Set(rowKey(row), value)
	}
}

// rowKey hashes the canonical encoding of a row. Cell kind is part of the
// encoding so `"120"` and `120` in the same position never collide.
func rowKey(row []model.FeatureValue) []byte {
	h := murmur3.New128()
	buf := make([]byte, 8)
	for _, v := range row {
		switch v.Kind {
		case model.KindCategorical:
			h.Write([]byte{'s'})
			h.Write([]byte(v.Str))
		case model.KindNumeric:
			h.Write([]byte{'n'})
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v.Num))
			h.Write(buf)
		case model.KindBoolean:
			if v.Bool {
				h.Write([]byte{'b', 1})
			} else {
				h.Write([]byte{'b', 0})
			}
		}
		h.Write([]byte{0})
	}
	key := make([]byte, 0, 16)
	hi, lo := h.Sum128()
	binary.LittleEndian.PutUint64(buf, hi)
	key = append(key, buf...)
	binary.LittleEndian.PutUint64(buf, lo)
	return append(key, buf...)
}
