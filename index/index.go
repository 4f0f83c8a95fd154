// Package index maintains a full-text search index over resolved NFT
// metadata so tokens can be found again by name or description without
// another chain round trip.
package index

import (
	"fmt"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"

	"github.com/chainstash/chainstash/store"
)

// Hit is one search result with its relevance score.
type Hit struct {
	ContractAddress string
	TokenID         string
	Name            string
	Description     string
	Score           float64
}

type metadataDoc struct {
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
}

type MetadataIndex struct {
	index bleve.Index
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = en.AnalyzerName

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Index = false

	defaultMapping := bleve.NewDocumentMapping()
	defaultMapping.AddFieldMappingsAt("name", textFieldMapping)
	defaultMapping.AddFieldMappingsAt("description", textFieldMapping)
	defaultMapping.AddFieldMappingsAt("contract_address", keywordFieldMapping)
	defaultMapping.AddFieldMappingsAt("token_id", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", defaultMapping)
	indexMapping.DefaultAnalyzer = "en"
	return indexMapping
}

// Open opens the index at path, creating it when it doesn't exist yet.
func Open(path string) (*MetadataIndex, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening metadata index: %w", err)
	}
	return &MetadataIndex{index: idx}, nil
}

func (mi *MetadataIndex) Close() error {
	return mi.index.Close()
}

// Add indexes one resolved record. The document id is the natural key, so
// re-resolving a token replaces its previous index entry just like the store
// upserts its row.
func (mi *MetadataIndex) Add(record *store.NFTMetadata) error {
	id := record.ContractAddress + ":" + record.TokenID
	return mi.index.Index(id, metadataDoc{
		ContractAddress: record.ContractAddress,
		TokenID:         record.TokenID,
		Name:            record.Name,
		Description:     record.Description,
	})
}

// Search returns ranked hits for input, combining an exact phrase match
// with a fuzziness-1 match so near-misses still surface.
func (mi *MetadataIndex) Search(input string) ([]Hit, error) {
	matchQuery := bleve.NewMatchPhraseQuery(input)
	fuzzyQuery := bleve.NewFuzzyQuery(input)
	fuzzyQuery.Fuzziness = 1
	query := bleve.NewDisjunctionQuery(matchQuery, fuzzyQuery)

	request := bleve.NewSearchRequest(query)
	request.Fields = []string{"*"}
	searchResults, err := mi.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("searching metadata index: %w", err)
	}

	hits := []Hit{}
	for _, hit := range searchResults.Hits {
		hits = append(hits, Hit{
			ContractAddress: fieldString(hit.Fields, "contract_address"),
			TokenID:         fieldString(hit.Fields, "token_id"),
			Name:            fieldString(hit.Fields, "name"),
			Description:     fieldString(hit.Fields, "description"),
			Score:           hit.Score,
		})
	}
	return hits, nil
}

func fieldString(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
