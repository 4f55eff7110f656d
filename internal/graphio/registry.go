package graphio

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/shaiso/daxgen/internal/graph"
)

// Codec — формат сериализации графа.
//
// Каждый формат (json, graphml, gexf, gob, msgpack) реализует этот
// интерфейс.
type Codec interface {
	// Name возвращает имя формата.
	Name() string

	// Extensions возвращает расширения файлов без точки.
	Extensions() []string

	// Decode читает граф.
	Decode(r io.Reader) (*graph.Graph, error)
}

// Encoder — формат, умеющий записывать граф.
type Encoder interface {
	Encode(w io.Writer, g *graph.Graph) error
}

// FormatInfo — описание зарегистрированного формата.
type FormatInfo struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	CanEncode  bool     `json:"can_encode"`
}

// Registry — реестр форматов.
//
// Позволяет регистрировать форматы и находить их по имени или
// расширению. Потокобезопасен.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
	exts   map[string]string
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Codec),
		exts:   make(map[string]string),
	}
}

// DefaultRegistry создаёт реестр со всеми стандартными форматами.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewNodeLinkCodec())
	r.Register(NewGraphMLCodec())
	r.Register(NewGEXFCodec())
	r.Register(NewGobCodec())
	r.Register(NewMsgpackCodec())

	return r
}

// Register регистрирует формат.
// Если формат с таким именем уже существует, он будет перезаписан.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[c.Name()] = c
	for _, ext := range c.Extensions() {
		r.exts[strings.ToLower(ext)] = c.Name()
	}
}

// Get возвращает формат по имени.
func (r *Registry) Get(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.codecs[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return c, nil
}

// Has проверяет, зарегистрирован ли формат.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.codecs[strings.ToLower(name)]
	return exists
}

// ForPath возвращает формат по расширению пути.
// Регистр не важен; берётся текст после последней точки.
// Возвращает *FormatError, если расширения нет или оно неизвестно.
func (r *Registry) ForPath(p string) (Codec, error) {
	ext := Ext(p)
	if ext == "" {
		return nil, &FormatError{Path: p}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	name, exists := r.exts[ext]
	if !exists {
		return nil, &FormatError{Path: p, Ext: ext}
	}
	return r.codecs[name], nil
}

// Formats возвращает описания всех форматов, отсортированные по имени.
func (r *Registry) Formats() []FormatInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]FormatInfo, 0, len(r.codecs))
	for _, c := range r.codecs {
		_, canEncode := c.(Encoder)
		infos = append(infos, FormatInfo{
			Name:       c.Name(),
			Extensions: c.Extensions(),
			CanEncode:  canEncode,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Decode читает граф в формате, определённом по пути.
func (r *Registry) Decode(p string, rd io.Reader) (*graph.Graph, error) {
	c, err := r.ForPath(p)
	if err != nil {
		return nil, err
	}
	return c.Decode(rd)
}

// Encode записывает граф в формате, определённом по пути.
func (r *Registry) Encode(p string, w io.Writer, g *graph.Graph) error {
	c, err := r.ForPath(p)
	if err != nil {
		return err
	}
	enc, ok := c.(Encoder)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEncodeNotSupported, c.Name())
	}
	return enc.Encode(w, g)
}

// Ext возвращает расширение пути без точки в нижнем регистре.
func Ext(p string) string {
	base := path.Base(p)
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}
