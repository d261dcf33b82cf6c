package predict

import (
	"testing"
	"time"

	"github.com/alexheretic/crfseek/internal/errors"
)

func TestAggregate(t *testing.T) {
	results := []SampleResult{
		{Index: 0, Score: 96, EncodedBytes: 10, SampleBytes: 100, EncodeTime: 10 * time.Second, SampleDuration: 20},
		{Index: 1, Score: 94, EncodedBytes: 20, SampleBytes: 100, EncodeTime: 10 * time.Second, SampleDuration: 20},
		{Index: 2, Score: 95, EncodedBytes: 30, SampleBytes: 100, EncodeTime: 10 * time.Second, SampleDuration: 20},
	}

	p, err := Aggregate(results, 1000, 600)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if p.MeanScore != 95 {
		t.Errorf("MeanScore = %v, want 95", p.MeanScore)
	}
	// 60 encoded / 300 source = 20%
	if p.SizePercent != 20 {
		t.Errorf("SizePercent = %v, want 20", p.SizePercent)
	}
	if p.PredictedSizeBytes != 200 {
		t.Errorf("PredictedSizeBytes = %d, want 200", p.PredictedSizeBytes)
	}
	// 10s encode per 20s sample, 600s source: 300s
	if p.PredictedDuration != 300*time.Second {
		t.Errorf("PredictedDuration = %v, want 5m", p.PredictedDuration)
	}
}

func TestAggregateMeanBoundedByInputs(t *testing.T) {
	scoreSets := [][]float64{
		{80, 90, 100},
		{95},
		{0, 0, 0},
		{12.5, 99.9, 33.3, 71.2},
	}

	for _, scores := range scoreSets {
		results := make([]SampleResult, len(scores))
		minScore, maxScore := scores[0], scores[0]
		for i, s := range scores {
			results[i] = SampleResult{Index: i, Score: s, SampleBytes: 1, SampleDuration: 1}
			if s < minScore {
				minScore = s
			}
			if s > maxScore {
				maxScore = s
			}
		}

		p, err := Aggregate(results, 100, 60)
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		if p.MeanScore < minScore || p.MeanScore > maxScore {
			t.Errorf("mean %v outside [%v, %v] for %v", p.MeanScore, minScore, maxScore, scores)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(nil, 100, 60)
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if !errors.IsKind(err, errors.KindInsufficientSamples) {
		t.Errorf("expected KindInsufficientSamples, got %v", err)
	}
}

func TestAggregateSingleSample(t *testing.T) {
	p, err := Aggregate([]SampleResult{
		{Score: 90, EncodedBytes: 50, SampleBytes: 100, EncodeTime: 5 * time.Second, SampleDuration: 10},
	}, 2000, 100)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if p.MeanScore != 90 {
		t.Errorf("MeanScore = %v", p.MeanScore)
	}
	if p.SizePercent != 50 {
		t.Errorf("SizePercent = %v, want 50", p.SizePercent)
	}
	if p.PredictedSizeBytes != 1000 {
		t.Errorf("PredictedSizeBytes = %d, want 1000", p.PredictedSizeBytes)
	}
	if p.PredictedDuration != 50*time.Second {
		t.Errorf("PredictedDuration = %v, want 50s", p.PredictedDuration)
	}
}
