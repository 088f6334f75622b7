package convert

import (
	"os"

	"github.com/BR1py/itertree-sub001/itree"
	"github.com/BR1py/itertree-sub001/persist"
)

// docLoader serves file links to YAML and JSON documents.
type docLoader struct{}

func (docLoader) Load(path string) (*itree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

func (docLoader) Fingerprint(path string) (uint64, error) {
	return persist.Fingerprint(path)
}

func init() {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		itree.RegisterFileLoader(ext, docLoader{})
	}
}
