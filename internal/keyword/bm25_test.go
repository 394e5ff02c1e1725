package keyword

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_ZeroCases(t *testing.T) {
	doc := []string{"machine", "learning", "models"}
	if got := Score(nil, doc, 3); got != 0 {
		t.Errorf("empty query: got %v, want 0", got)
	}
	if got := Score([]string{"cooking"}, doc, 3); got != 0 {
		t.Errorf("no overlap: got %v, want 0", got)
	}
	if got := Score([]string{"machine"}, nil, 3); got != 0 {
		t.Errorf("empty doc: got %v, want 0", got)
	}
}

func TestScore_SingleMatch(t *testing.T) {
	// freq=1, docLen=avg -> 1*2.5/(1+1.5) = 1
	got := Score([]string{"go"}, []string{"go", "is", "fun"}, 3)
	if !approxEqual(got, 1) {
		t.Errorf("got %v, want 1", got)
	}
}

func TestScore_KnownValue(t *testing.T) {
	// freq=2, docLen=4, avg=2: norm = 1.5*(0.25+0.75*2) = 2.625
	// 2*2.5/(2+2.625)
	want := 5.0 / 4.625
	got := Score([]string{"go"}, []string{"go", "go", "a", "b"}, 2)
	if !approxEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScore_MonotonicInFrequency(t *testing.T) {
	query := []string{"go"}
	prev := 0.0
	for freq := 1; freq <= 6; freq++ {
		doc := make([]string, 0, 10)
		for i := 0; i < freq; i++ {
			doc = append(doc, "go")
		}
		for len(doc) < 10 {
			doc = append(doc, "x")
		}
		got := Score(query, doc, 10)
		if got <= prev {
			t.Fatalf("freq %d: score %v not greater than %v", freq, got, prev)
		}
		prev = got
	}
}

func TestScore_RepeatedQueryTokensAdd(t *testing.T) {
	doc := []string{"go", "is", "fun"}
	once := Score([]string{"go"}, doc, 3)
	twice := Score([]string{"go", "go"}, doc, 3)
	if !approxEqual(twice, 2*once) {
		t.Errorf("twice = %v, want %v", twice, 2*once)
	}
}

func TestScore_LongerDocumentsScoreLower(t *testing.T) {
	short := Score([]string{"go"}, []string{"go", "x"}, 4)
	long := Score([]string{"go"}, []string{"go", "x", "x", "x", "x", "x"}, 4)
	if !(short > long) {
		t.Errorf("short %v should exceed long %v", short, long)
	}
}

func TestScore_NonPositiveAverage(t *testing.T) {
	doc := []string{"go", "x", "y", "z"}
	got := Score([]string{"go"}, doc, 0)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("got %v", got)
	}
	if !approxEqual(got, 1) {
		t.Errorf("got %v, want 1 (length ratio treated as 1)", got)
	}
}

func TestScoreWithParams_BZeroIgnoresLength(t *testing.T) {
	p := BM25Params{K1: DefaultK1, B: 0}
	a := ScoreWithParams([]string{"go"}, []string{"go"}, 10, p)
	b := ScoreWithParams([]string{"go"}, []string{"go", "x", "x", "x"}, 10, p)
	if !approxEqual(a, b) {
		t.Errorf("b=0 should ignore length: %v != %v", a, b)
	}
}

func TestTermFrequencies(t *testing.T) {
	got := TermFrequencies([]string{"a", "b", "a", "a"})
	if got["a"] != 3 || got["b"] != 1 || len(got) != 2 {
		t.Errorf("got %v", got)
	}
}

func TestAverageLength(t *testing.T) {
	if got := AverageLength(nil); got != 0 {
		t.Errorf("empty: got %v", got)
	}
	got := AverageLength([][]string{{"a"}, {"a", "b", "c"}, {}})
	if !approxEqual(got, 4.0/3.0) {
		t.Errorf("got %v", got)
	}
}
