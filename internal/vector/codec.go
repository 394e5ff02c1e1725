package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/hyperjump/notesearch/pkg/utils"
)

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

func encodeMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}

func decodeMetadata(s string) (map[string]string, error) {
	m := make(map[string]string)
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// cosineDistance returns 1 - cosine similarity.
func cosineDistance(a, b []float32) float64 {
	return 1 - utils.CosineSimilarity(a, b)
}

// prepareRecords validates dimensions and assigns IDs to records that lack one.
func prepareRecords(records []Record, dimensions int) ([]Record, error) {
	out := make([]Record, len(records))
	for i, r := range records {
		if len(r.Embedding) != dimensions {
			return nil, fmt.Errorf("%w: record %d has %d, collection expects %d",
				ErrDimensionMismatch, i, len(r.Embedding), dimensions)
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		out[i] = r
	}
	return out, nil
}

type scoredRecord struct {
	record   Record
	distance float64
}

// nearest sorts by increasing distance, keeping insertion order for ties, and builds the result.
func nearest(scored []scoredRecord, nResults int) *QueryResult {
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].distance < scored[j].distance })
	if nResults > len(scored) {
		nResults = len(scored)
	}
	res := &QueryResult{
		IDs:       make([]string, nResults),
		Documents: make([]string, nResults),
		Metadatas: make([]map[string]string, nResults),
		Distances: make([]float64, nResults),
	}
	for i := 0; i < nResults; i++ {
		res.IDs[i] = scored[i].record.ID
		res.Documents[i] = scored[i].record.Document
		res.Metadatas[i] = scored[i].record.Metadata
		res.Distances[i] = scored[i].distance
	}
	return res
}
