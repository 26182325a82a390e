package bleve

import (
	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/lang/cjk" // 注册 cjk analyzer
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var postIndex bleve.Index

// InitBleve opens the index of posts the gateway has served. An empty
// bleve.path keeps it in memory.
func InitBleve() {
	var err error
	postIndex, err = createIndex(viper.GetString("bleve.path"))
	if err != nil {
		panic(err.Error())
	}
}

func GetPostIndex() bleve.Index {
	return postIndex
}

func NewMemIndex() (bleve.Index, error) {
	return createIndex("")
}

func newIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = "cjk" // 韩文按 bigram 切分

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	rawFieldMapping := bleve.NewTextFieldMapping()
	rawFieldMapping.Index = false
	rawFieldMapping.Store = true
	rawFieldMapping.IncludeInAll = false

	postMapping := bleve.NewDocumentMapping()
	postMapping.AddFieldMappingsAt("title", textFieldMapping)
	postMapping.AddFieldMappingsAt("content", textFieldMapping)
	postMapping.AddFieldMappingsAt("tags", textFieldMapping)
	postMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	postMapping.AddFieldMappingsAt("tag_list", keywordFieldMapping)
	postMapping.AddFieldMappingsAt("region", keywordFieldMapping)
	postMapping.AddFieldMappingsAt("post_type", keywordFieldMapping)
	postMapping.AddFieldMappingsAt("created_time", keywordFieldMapping)
	postMapping.AddFieldMappingsAt("raw", rawFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "cjk"
	indexMapping.DefaultMapping = postMapping
	return indexMapping
}

func createIndex(path string) (bleve.Index, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(newIndexMapping())
		return index, errors.Wrap(err, "bleve:createIndex: NewMemOnly")
	}

	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexMetaMissing || err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, newIndexMapping())
	}
	return index, errors.Wrap(err, "bleve:createIndex: open "+path)
}
