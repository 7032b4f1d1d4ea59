package usecase

import (
	"context"
	"testing"

	"github.com/furnilens/backend/internal/domain"
)

func TestScore_FieldWeights(t *testing.T) {
	s := NewRelevanceScorer(false)

	testCases := []struct {
		name    string
		product domain.ProductRecord
		terms   []string
		want    float64
	}{
		{
			name:    "whole title",
			product: domain.ProductRecord{Title: "Ottoman"},
			terms:   []string{"ottoman"},
			want:    4.0,
		},
		{
			name:    "whole word in title",
			product: domain.ProductRecord{Title: "Round Ottoman Pouf"},
			terms:   []string{"ottoman"},
			want:    4.0,
		},
		{
			name:    "title substring only",
			product: domain.ProductRecord{Title: "Ottomans Set"},
			terms:   []string{"ottoman"},
			want:    2.0,
		},
		{
			name:    "brand",
			product: domain.ProductRecord{Title: "Chair", Brand: "Zinus"},
			terms:   []string{"zinus"},
			want:    3.0,
		},
		{
			name:    "each matching category plus primary category",
			product: domain.ProductRecord{Title: "X", Categories: []string{"Home", "Home Office"}, PrimaryCategory: "Home Office"},
			terms:   []string{"home"},
			want:    2.5 + 2.5 + 2.0,
		},
		{
			name:    "price against decimal rendering",
			product: domain.ProductRecord{Title: "X", Price: floatPtr(450)},
			terms:   []string{"450.0"},
			want:    2.0,
		},
		{
			name:    "price term with dollar sign",
			product: domain.ProductRecord{Title: "X", Price: floatPtr(24.99)},
			terms:   []string{"$24.99"},
			want:    2.0,
		},
		{
			name:    "bare dollar sign does not match prices",
			product: domain.ProductRecord{Title: "X", Price: floatPtr(24.99)},
			terms:   []string{"$"},
			want:    0,
		},
		{
			name:    "images counted per url",
			product: domain.ProductRecord{Title: "X", Images: []string{"https://a.example.com/sofa1.jpg", "https://a.example.com/sofa2.jpg"}},
			terms:   []string{"sofa"},
			want:    2.0,
		},
		{
			name: "remaining fields",
			product: domain.ProductRecord{
				Title:             "X",
				Manufacturer:      "acme",
				PackageDimensions: "acme box",
				CountryOfOrigin:   "acmeland",
				ID:                "acme-1",
			},
			terms: []string{"acme"},
			want:  2.5 + 1.0 + 1.5 + 1.0,
		},
		{
			name:    "description",
			product: domain.ProductRecord{Title: "X", Description: "Sturdy and comfortable"},
			terms:   []string{"sturdy"},
			want:    1.5,
		},
		{
			name:    "no match",
			product: domain.ProductRecord{Title: "Lamp", Brand: "Lux"},
			terms:   []string{"sofa"},
			want:    0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Score(tc.terms, &tc.product)
			if got != tc.want {
				t.Errorf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScore_CrossFieldDoubleCounting(t *testing.T) {
	s := NewRelevanceScorer(false)
	product := domain.ProductRecord{
		Title:       "Modern Oak Dining Table",
		Description: "Modern Oak Dining Table",
		Material:    "Oak",
		Price:       floatPtr(450),
	}

	got := s.Score([]string{"oak", "dining", "table"}, &product)

	// title 3x4.0, description 3x1.5, material 2.0
	want := 12.0 + 4.5 + 2.0
	if got != want {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestScore_SumsEveryTermInEveryField(t *testing.T) {
	s := NewRelevanceScorer(false)
	product := domain.ProductRecord{Title: "X", Description: "ab", CountryOfOrigin: "ab"}

	got := s.Score([]string{"a", "b", "ab"}, &product)

	if got != 9.0 {
		t.Errorf("Score = %v, want 9", got)
	}
}

func TestScoreCatalog(t *testing.T) {
	s := NewRelevanceScorer(false)
	catalog := domain.NewCatalog([]domain.ProductRecord{
		{ID: "1", Title: "Oak Chair", SimilarityScore: 1.0},
		{ID: "2", Title: "Glass Lamp", SimilarityScore: 1.0},
		{ID: "3", Title: "Oak Table", SimilarityScore: 1.0},
	}, "test")

	got, err := s.ScoreCatalog(context.Background(), []string{"oak"}, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("ScoreCatalog returned %+v, want products 1 and 3 in catalog order", got)
	}
	if got[0].SimilarityScore != 4.0 {
		t.Errorf("SimilarityScore = %v, want 4", got[0].SimilarityScore)
	}
	if catalog.Products[0].SimilarityScore != 1.0 {
		t.Error("catalog record was modified")
	}
}

func TestScoreCatalog_NoTerms(t *testing.T) {
	s := NewRelevanceScorer(false)
	catalog := domain.NewCatalog([]domain.ProductRecord{{ID: "1", Title: "Chair"}}, "test")

	got, err := s.ScoreCatalog(context.Background(), nil, catalog)
	if err != nil || len(got) != 0 {
		t.Errorf("ScoreCatalog = %v, %v; want empty", got, err)
	}
}

func TestScoreCatalog_CanceledContext(t *testing.T) {
	s := NewRelevanceScorer(false)
	catalog := domain.NewCatalog([]domain.ProductRecord{{ID: "1", Title: "Chair"}}, "test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ScoreCatalog(ctx, []string{"chair"}, catalog); err == nil {
		t.Error("expected context error")
	}
}

func TestPythonFloatString(t *testing.T) {
	testCases := map[float64]string{
		450:    "450.0",
		24.99:  "24.99",
		1099.5: "1099.5",
	}
	for in, want := range testCases {
		if got := pythonFloatString(in); got != want {
			t.Errorf("pythonFloatString(%v) = %q, want %q", in, got, want)
		}
	}
}
