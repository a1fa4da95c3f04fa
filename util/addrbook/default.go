package addrbook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"

	bankcommon "github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/util/logger"
)

type entry struct {
	Address string `json:"address"`
	Desc    string `json:"desc"`
	// Key is the lower-cased address for prefix lookups
	Key string `json:"key"`
}

// Book is an in-memory bleve index over labelled addresses. It resolves
// exact addresses and full text searches labels.
type Book struct {
	labels map[string]bankcommon.Address
	index  bleve.Index
}

func buildIndexMapping() mapping.IndexMapping {
	descMapping := bleve.NewTextFieldMapping()
	descMapping.Analyzer = en.AnalyzerName

	keyMapping := bleve.NewTextFieldMapping()
	keyMapping.Analyzer = keyword.Name
	keyMapping.Store = false

	addressMapping := bleve.NewTextFieldMapping()
	addressMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("desc", descMapping)
	docMapping.AddFieldMappingsAt("key", keyMapping)
	docMapping.AddFieldMappingsAt("address", addressMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = en.AnalyzerName
	return indexMapping
}

// New indexes entries. A later entry for the same address replaces the
// earlier one.
func New(entries []bankcommon.Address) (*Book, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("couldn't create address index: %w", err)
	}
	b := &Book{
		labels: map[string]bankcommon.Address{},
		index:  index,
	}
	batch := index.NewBatch()
	for _, e := range entries {
		if !bankcommon.IsAddress(e.Address) {
			logger.L().Debugw("skipping invalid address", "address", e.Address, "desc", e.Desc)
			continue
		}
		key := strings.ToLower(e.Address)
		b.labels[key] = e
		if err = batch.Index(key, entry{Address: e.Address, Desc: e.Desc, Key: key}); err != nil {
			return nil, err
		}
	}
	if err = index.Batch(batch); err != nil {
		return nil, fmt.Errorf("couldn't index addresses: %w", err)
	}
	logger.L().Debugw("address book indexed", "count", len(b.labels))
	return b, nil
}

func (b *Book) Resolve(addr string) bankcommon.Address {
	if a, found := b.labels[strings.ToLower(addr)]; found {
		return a
	}
	return bankcommon.Address{Address: addr, Desc: bankcommon.UnknownDesc}
}

// Search returns at most limit entries whose label matches input, or whose
// address starts with it, best match first.
func (b *Book) Search(input string, limit int) ([]bankcommon.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	matchQuery := bleve.NewMatchPhraseQuery(input)
	matchQuery.SetField("desc")
	fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(input))
	fuzzyQuery.SetField("desc")
	fuzzyQuery.Fuzziness = 1
	prefixQuery := bleve.NewPrefixQuery(strings.ToLower(input))
	prefixQuery.SetField("key")

	request := bleve.NewSearchRequestOptions(
		bleve.NewDisjunctionQuery(matchQuery, fuzzyQuery, prefixQuery), limit, 0, false,
	)
	result, err := b.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("address search failed: %w", err)
	}
	found := make([]bankcommon.Address, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if a, ok := b.labels[hit.ID]; ok {
			found = append(found, a)
		}
	}
	return found, nil
}

func (b *Book) Close() error {
	return b.index.Close()
}

// LoadLabels reads an addresses.json file mapping addresses to labels. A
// missing file is not an error.
func LoadLabels(path string) ([]bankcommon.Address, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	labels := map[string]string{}
	if err = json.Unmarshal(content, &labels); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	result := make([]bankcommon.Address, 0, len(labels))
	for addr, desc := range labels {
		result = append(result, bankcommon.Address{Address: addr, Desc: desc})
	}
	return result, nil
}
