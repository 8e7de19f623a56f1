package groups

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Directory сопоставляет название группы с её идентификатором в CIST.
// Заполняется один раз при старте и дальше только читается.
type Directory struct {
	groups map[string]string
}

// Load читает строки вида "name:id"; строки без двоеточия пропускаются.
// Длина строки не ограничена.
func Load(r io.Reader) (*Directory, error) {
	groups := make(map[string]string)

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read groups: %w", err)
		}

		if name, id, found := strings.Cut(strings.TrimSpace(line), ":"); found {
			groups[strings.TrimSpace(name)] = strings.TrimSpace(id)
		}

		if err != nil {
			break
		}
	}

	return &Directory{groups: groups}, nil
}

func LoadFile(path string) (*Directory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open groups file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

func (d *Directory) ResolveGroup(name string) (string, bool) {
	id, ok := d.groups[name]
	return id, ok
}

func (d *Directory) GroupNames() []string {
	names := make([]string, 0, len(d.groups))
	for name := range d.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Directory) Len() int {
	return len(d.groups)
}
