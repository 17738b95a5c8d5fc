package discovery

import (
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"github.com/tisoft/java-traits/internal/errors"
)

// A manifest describes one compilation unit's worth of traits and host
// classes. In TOML:
//
//	package = "com.example.traits"
//
//	[[trait]]
//	name = "Rectangular"
//	  [[trait.method]]
//	  name = "getWidth"
//	  returns = "int"
//	  abstract = true
//
//	[[host]]
//	name = "FootballField"
//	  [host.annotation]
//	  traits = ["Rectangular"]
//
// The YAML form uses the keys "traits", "hosts" and "methods" for the lists.
type manifest struct {
	Package string       `toml:"package" yaml:"package"`
	Traits  []traitEntry `toml:"trait" yaml:"traits" validate:"dive"`
	Hosts   []hostEntry  `toml:"host" yaml:"hosts" validate:"dive"`
}

type traitEntry struct {
	Name           string       `toml:"name" yaml:"name" validate:"required"`
	TypeParameters []string     `toml:"type_parameters" yaml:"type_parameters"`
	Methods        []MethodDecl `toml:"method" yaml:"methods" validate:"dive"`
}

type hostEntry struct {
	Name       string         `toml:"name" yaml:"name" validate:"required"`
	Methods    []MethodDecl   `toml:"method" yaml:"methods" validate:"dive"`
	Annotation map[string]any `toml:"annotation" yaml:"annotation"`
}

// Manifest file extensions understood by ParseFile.
const (
	ExtTOML  = ".toml"
	ExtYAML  = ".yaml"
	ExtYML   = ".yml"
	ExtTxtar = ".txtar"
)

// IsManifest reports whether name has a manifest extension.
func IsManifest(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtTOML, ExtYAML, ExtYML, ExtTxtar:
		return true
	}
	return false
}

// LoadFile reads and parses the manifest at file.
func LoadFile(file string) ([]Element, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.IO(err, "read manifest %s", file)
	}
	return ParseFile(file, data)
}

// ParseFile parses manifest data, choosing the format from name's
// extension. A txtar archive may hold any number of TOML or YAML manifests.
func ParseFile(name string, data []byte) ([]Element, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtTOML:
		return parseTOML(name, data)
	case ExtYAML, ExtYML:
		return parseYAML(name, data)
	case ExtTxtar:
		return parseArchive(name, data)
	default:
		return nil, errors.Configurationf("%s: unknown manifest format %q", name, filepath.Ext(name))
	}
}

func parseArchive(name string, data []byte) ([]Element, error) {
	ar := txtar.Parse(data)
	var out []Element
	for _, f := range ar.Files {
		if !IsManifest(f.Name) || strings.EqualFold(path.Ext(f.Name), ExtTxtar) {
			return nil, errors.Configurationf("%s: archive member %s is not a TOML or YAML manifest", name, f.Name)
		}
		elems, err := ParseFile(name+"/"+f.Name, f.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, elems...)
	}
	return out, nil
}

func parseTOML(name string, data []byte) ([]Element, error) {
	var m manifest
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, errors.WithDetailf(
				errors.Configurationf("%s:%d: %s", name, perr.Position.Line, perr.Message),
				"%s", perr.ErrorWithUsage())
		}
		return nil, errors.Configurationf("%s: %v", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Configurationf("%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	return m.elements(name, nil)
}

func parseYAML(name string, data []byte) ([]Element, error) {
	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Configurationf("%s: %v", name, err)
	}
	// A second pass keeps the nodes for element positions.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Configurationf("%s: %v", name, err)
	}
	return m.elements(name, yamlLines(&root))
}

// yamlLines returns the line of every entry in the traits and hosts lists,
// keyed by list name.
func yamlLines(root *yaml.Node) map[string][]int {
	lines := make(map[string][]int)
	if len(root.Content) == 0 {
		return lines
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return lines
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		if val.Kind != yaml.SequenceNode {
			continue
		}
		for _, item := range val.Content {
			lines[key.Value] = append(lines[key.Value], item.Line)
		}
	}
	return lines
}

func (m manifest) elements(file string, lines map[string][]int) ([]Element, error) {
	if err := validate.Struct(m); err != nil {
		return nil, errors.FromValidation(err, file)
	}
	pos := func(list string, i int) Pos {
		if l := lines[list]; i < len(l) {
			return Pos{File: file, Line: l[i]}
		}
		return Pos{File: file}
	}
	qualify := func(name string) string {
		if m.Package == "" || hasPackage(name) {
			return name
		}
		return m.Package + "." + name
	}

	out := make([]Element, 0, len(m.Traits)+len(m.Hosts))
	for i, t := range m.Traits {
		out = append(out, Element{
			Kind:           KindTrait,
			Name:           qualify(t.Name),
			TypeParameters: t.TypeParameters,
			Methods:        t.Methods,
			Pos:            pos("traits", i),
		})
	}
	for i, h := range m.Hosts {
		out = append(out, Element{
			Kind:       KindHost,
			Name:       qualify(h.Name),
			Methods:    h.Methods,
			Annotation: NewAnnotation(h.Annotation),
			Pos:        pos("hosts", i),
		})
	}
	return out, nil
}
