package knowledge

import (
	"fmt"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/blevesearch/bleve/v2"
)

// maxIndexHits bounds a fallback search.
const maxIndexHits = 50

// factDocument is the indexed shape of a learned fact.
type factDocument struct {
	Scope string `json:"scope"`
	Text  string `json:"text"`
}

// factIndex is a full-text fallback over learned facts, used when substring matching finds nothing.
type factIndex struct {
	index bleve.Index
}

func newFactIndex() (*factIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create fact index: %w", err)
	}
	return &factIndex{index: idx}, nil
}

func (f *factIndex) put(rec domain.FactRecord) error {
	text := rec.Fact.Question + " " + rec.Fact.Answer
	if !rec.Fact.IsQA() {
		text = rec.Fact.Topic + " " + rec.Fact.Information
	}
	return f.index.Index(rec.ID, factDocument{Scope: rec.Scope.String(), Text: text})
}

// search returns matching record IDs, best first.
func (f *factIndex) search(query string) ([]string, error) {
	q := bleve.NewMatchQuery(query)
	q.SetField("text")
	req := bleve.NewSearchRequestOptions(q, maxIndexHits, 0, false)
	res, err := f.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("fact index search: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (f *factIndex) close() error {
	return f.index.Close()
}
