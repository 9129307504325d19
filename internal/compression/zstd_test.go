package compression

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	m.Run()
}

func sampleArtifact() []byte {
	// JSON-ish repetitive payload, same shape class as a serialized forest
	data := []byte(`{"features":[{"name":"mileage","kind":"numeric"}],"forest":{"trees":[`)
	for i := 0; i < 200; i++ {
		data = append(data, []byte(`{"feature":[0,-1,-1],"threshold":[100000,0,0],"value":[0,80,120]},`)...)
	}
	return append(data, []byte(`]}}`)...)
}

func TestZStdRoundTrip(t *testing.T) {
	data := sampleArtifact()
	enc := NewZStdEncoder()
	cdata := enc.Encode(data)
	assert.NotEmpty(t, cdata)
	assert.Less(t, len(cdata), len(data))

	dec := NewZStdDecoder()
	ddata, err := dec.Decode(cdata)
	assert.NoError(t, err)
	assert.Equal(t, data, ddata)
}

func TestZStdDecoder_GarbageInput(t *testing.T) {
	dec := NewZStdDecoder()
	_, err := dec.Decode([]byte("not a zstd frame"))
	assert.Error(t, err)
}

func TestSniffType(t *testing.T) {
	assert.Equal(t, TypeZSTD, SniffType("rf_pricing_bundle.json.zst"))
	assert.Equal(t, TypeZSTD, SniffType("bundle.zstd"))
	assert.Equal(t, TypeNone, SniffType("rf_pricing_bundle.json"))
}

func TestGetEncoderDecoder(t *testing.T) {
	enc, err := GetEncoder(TypeNone)
	assert.NoError(t, err)
	assert.Equal(t, TypeNone, enc.EncoderType())

	dec, err := GetDecoder(TypeZSTD)
	assert.NoError(t, err)
	assert.Equal(t, TypeZSTD, dec.DecoderType())

	_, err = GetDecoder(Type(9))
	assert.Error(t, err)
}
