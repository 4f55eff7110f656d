package domain

// Replica — физическая копия логического файла.
type Replica struct {
	// URL — адрес копии (file://, gsiftp://, s3:// и т.д.).
	URL string `json:"url"`

	// Site — метка сайта, на котором лежит копия.
	Site string `json:"site"`
}

// File — логический файл и его реплики.
//
// Один File соответствует одной записи каталога. Задачи ссылаются на
// File в аргументах и в объявлениях входов/выходов.
type File struct {
	// Name — логическое имя файла (lfn).
	Name string `json:"name"`

	// Replicas — физические копии. Может быть пустым.
	Replicas []Replica `json:"replicas,omitempty"`
}

// NewFile создаёт файл без реплик.
func NewFile(name string) *File {
	return &File{Name: name}
}

// AddReplica добавляет физическую копию.
func (f *File) AddReplica(url, site string) {
	f.Replicas = append(f.Replicas, Replica{URL: url, Site: site})
}

// HasReplicas возвращает true, если у файла есть хотя бы одна копия.
func (f *File) HasReplicas() bool {
	return len(f.Replicas) > 0
}

// Catalog — отображение логических имён в файлы.
//
// Порядок записей совпадает с порядком первого добавления имени.
// Повторное добавление того же имени заменяет запись (last-write-wins),
// но сохраняет её позицию.
type Catalog struct {
	files map[string]*File
	order []string
}

// NewCatalog создаёт пустой каталог.
func NewCatalog() *Catalog {
	return &Catalog{
		files: make(map[string]*File),
		order: make([]string, 0),
	}
}

// Put добавляет или заменяет запись каталога.
func (c *Catalog) Put(f *File) {
	if _, exists := c.files[f.Name]; !exists {
		c.order = append(c.order, f.Name)
	}
	c.files[f.Name] = f
}

// Get возвращает запись по логическому имени.
func (c *Catalog) Get(name string) (*File, bool) {
	f, ok := c.files[name]
	return f, ok
}

// Has проверяет наличие логического имени в каталоге.
func (c *Catalog) Has(name string) bool {
	_, ok := c.files[name]
	return ok
}

// Len возвращает количество записей.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Names возвращает логические имена в порядке добавления.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Files возвращает все записи в порядке добавления.
func (c *Catalog) Files() []*File {
	files := make([]*File, 0, len(c.order))
	for _, name := range c.order {
		files = append(files, c.files[name])
	}
	return files
}

// WithReplicas возвращает только записи, у которых есть реплики.
func (c *Catalog) WithReplicas() []*File {
	files := make([]*File, 0)
	for _, name := range c.order {
		if f := c.files[name]; f.HasReplicas() {
			files = append(files, f)
		}
	}
	return files
}

// ReplicaCount возвращает общее число реплик во всём каталоге.
func (c *Catalog) ReplicaCount() int {
	n := 0
	for _, f := range c.files {
		n += len(f.Replicas)
	}
	return n
}
