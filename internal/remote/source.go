package remote

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// Loader reads one remote-definition document.
type Loader func(data []byte) ([]*Remote, error)

var loaders = map[string]Loader{
	"girr": parseGirr,
	"yaml": parseYAML,
	"toml": parseTOML,
}

var extensions = map[string]string{
	".girr": "girr",
	".xml":  "girr",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
}

// Formats returns the accepted format tags.
func Formats() []string {
	return []string{"girr", "toml", "yaml"}
}

// Load reads path using the loader for format. An empty format is inferred
// from the file extension.
func Load(format, path string) (*Set, error) {
	if format == "" {
		format = extensions[strings.ToLower(filepath.Ext(path))]
	}
	if _, ok := loaders[strings.ToLower(format)]; !ok {
		return nil, &SourceError{Path: path, Cause: fmt.Errorf("%w: %q", ErrUnknownFormat, format)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Cause: err}
	}
	return Parse(format, path, data)
}

// Parse decodes data in the given format. source only labels the result.
func Parse(format, source string, data []byte) (*Set, error) {
	loader, ok := loaders[strings.ToLower(format)]
	if !ok {
		return nil, &SourceError{Path: source, Cause: fmt.Errorf("%w: %q", ErrUnknownFormat, format)}
	}
	remotes, err := loader(data)
	if err != nil {
		return nil, &SourceError{Path: source, Cause: err}
	}
	return &Set{Source: source, Remotes: remotes}, nil
}

// Girr documents. Element names are matched without namespace.
type girrParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type girrParameters struct {
	Protocol   string          `xml:"protocol,attr"`
	Parameters []girrParameter `xml:"parameter"`
}

type girrCommand struct {
	Name       string          `xml:"name,attr"`
	Parameters *girrParameters `xml:"parameters"`
}

type girrCommandSet struct {
	Name     string        `xml:"name,attr"`
	Commands []girrCommand `xml:"command"`
}

type girrRemote struct {
	Name        string           `xml:"name,attr"`
	CommandSets []girrCommandSet `xml:"commandSet"`
}

type girrDocument struct {
	XMLName xml.Name
	Name    string           `xml:"name,attr"`
	Remotes []girrRemote     `xml:"remote"`
	Sets    []girrCommandSet `xml:"commandSet"`
}

func parseGirr(data []byte) ([]*Remote, error) {
	var doc girrDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var girrRemotes []girrRemote
	switch doc.XMLName.Local {
	case "remotes":
		girrRemotes = doc.Remotes
	case "remote":
		girrRemotes = []girrRemote{{Name: doc.Name, CommandSets: doc.Sets}}
	default:
		return nil, fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local)
	}

	remotes := make([]*Remote, 0, len(girrRemotes))
	for _, gr := range girrRemotes {
		if gr.Name == "" {
			return nil, fmt.Errorf("remote without name")
		}
		r := NewRemote(gr.Name)
		for _, set := range gr.CommandSets {
			for _, gc := range set.Commands {
				// Commands given only as raw timings carry no key.
				if gc.Parameters == nil || gc.Parameters.Protocol == "" {
					continue
				}
				params := make(map[string]int64, len(gc.Parameters.Parameters))
				for _, p := range gc.Parameters.Parameters {
					v, err := strconv.ParseInt(p.Value, 0, 64)
					if err != nil {
						return nil, fmt.Errorf("remote %s, command %s: parameter %s: %w", gr.Name, gc.Name, p.Name, err)
					}
					params[p.Name] = v
				}
				r.Add(&Command{Name: gc.Name, Protocol: gc.Parameters.Protocol, Parameters: params})
			}
		}
		remotes = append(remotes, r)
	}
	return remotes, nil
}

// YAML and TOML documents share one shape.
type fileCommand struct {
	Name       string           `yaml:"name" toml:"name"`
	Protocol   string           `yaml:"protocol" toml:"protocol"`
	Parameters map[string]int64 `yaml:"parameters" toml:"parameters"`
}

type fileRemote struct {
	Name     string        `yaml:"name" toml:"name"`
	Commands []fileCommand `yaml:"commands" toml:"commands"`
}

type fileDocument struct {
	Remotes []fileRemote `yaml:"remotes" toml:"remotes"`
}

func parseYAML(data []byte) ([]*Remote, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.build()
}

func parseTOML(data []byte) ([]*Remote, error) {
	var doc fileDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	return doc.build()
}

func (doc *fileDocument) build() ([]*Remote, error) {
	remotes := make([]*Remote, 0, len(doc.Remotes))
	for _, fr := range doc.Remotes {
		if fr.Name == "" {
			return nil, fmt.Errorf("remote without name")
		}
		r := NewRemote(fr.Name)
		for _, fc := range fr.Commands {
			if fc.Name == "" || fc.Protocol == "" {
				return nil, fmt.Errorf("remote %s: command needs name and protocol", fr.Name)
			}
			r.Add(&Command{Name: fc.Name, Protocol: fc.Protocol, Parameters: fc.Parameters})
		}
		remotes = append(remotes, r)
	}
	return remotes, nil
}
