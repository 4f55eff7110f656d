package engine

import (
	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

// BuildCatalog строит каталог файлов по узлам-файлам графа.
//
// Для каждого файла обязателен lfn. Адреса из pfn (через запятую)
// сопоставляются сайтам из sites по позиции; без sites каждому адресу
// достаётся defaultSite. Пустой сайт в списке тоже заменяется на
// defaultSite, пустой адрес пропускается, не сдвигая остальные пары.
// Если sites короче списка адресов, лишние адреса отбрасываются.
// Одинаковые lfn у разных узлов схлопываются в одну запись: побеждает
// последний узел.
func BuildCatalog(g *graph.Graph, defaultSite string) (*domain.Catalog, error) {
	if defaultSite == "" {
		defaultSite = domain.DefaultSite
	}

	catalog := domain.NewCatalog()

	for _, node := range g.Files() {
		name, ok := node.StringAttr(domain.AttrLFN)
		if !ok {
			return nil, NewMissingAttributeError(node.ID, domain.AttrLFN)
		}
		file := domain.NewFile(name)

		// Физические адреса, если есть
		if urls, ok := node.ListAttr(domain.AttrPFN); ok {
			sites, explicit := node.ListAttr(domain.AttrSites)
			if !explicit {
				sites = make([]string, len(urls))
				for i := range sites {
					sites[i] = defaultSite
				}
			}

			for i := 0; i < len(urls) && i < len(sites); i++ {
				if urls[i] == "" {
					continue
				}
				site := sites[i]
				if site == "" {
					site = defaultSite
				}
				file.AddReplica(urls[i], site)
			}
		}

		catalog.Put(file)
	}

	return catalog, nil
}
