package canon

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(event uint32, data []byte) []byte {
	rec := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint32(rec, uint32(len(rec)))
	binary.LittleEndian.PutUint32(rec[4:], event)
	copy(rec[8:], data)
	return rec
}

func propRecord(prop uint32, value []byte) []byte {
	data := make([]byte, 4+len(value))
	binary.LittleEndian.PutUint32(data, prop)
	copy(data[4:], value)
	return record(EC_EOS_PropValueChanged, data)
}

func TestDecodeEventStream(t *testing.T) {
	var stream []byte
	stream = append(stream, propRecord(0xD116, []byte{1, 0, 0, 0})...)
	stream = append(stream, record(0xC18A, []byte{0xaa, 0xbb})...) // unrelated event
	stream = append(stream, propRecord(DPC_EOS_ShutterCounter, []byte{9, 9, 9, 9, 9, 9, 9, 9})...)
	stream = append(stream, 0, 0, 0, 0, 0, 0, 0, 0) // terminator
	stream = append(stream, 0xde, 0xad)             // trailing garbage past the terminator

	props := DecodeEventStream(stream)
	require.Len(t, props, 2)
	assert.Equal(t, uint32(0xD116), props[0].Prop)
	assert.Equal(t, []byte{1, 0, 0, 0}, props[0].Data)
	assert.Equal(t, uint32(DPC_EOS_ShutterCounter), props[1].Prop)
	assert.Len(t, props[1].Data, 8)
}

func TestDecodeEventStreamTruncatedRecord(t *testing.T) {
	// Record promises 100 bytes, stream holds 12.
	stream := make([]byte, 12)
	binary.LittleEndian.PutUint32(stream, 100)
	binary.LittleEndian.PutUint32(stream[4:], EC_EOS_PropValueChanged)

	assert.Empty(t, DecodeEventStream(stream))
}

func TestDecodeEventStreamRecordLengthBelowHeader(t *testing.T) {
	stream := make([]byte, 16)
	binary.LittleEndian.PutUint32(stream, 4) // shorter than its own header
	binary.LittleEndian.PutUint32(stream[4:], EC_EOS_PropValueChanged)

	assert.Empty(t, DecodeEventStream(stream))
}

func TestDecodeEventStreamGarbage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		data := make([]byte, rng.Intn(128))
		rng.Read(data)
		DecodeEventStream(data) // must not panic or loop
	}
}
