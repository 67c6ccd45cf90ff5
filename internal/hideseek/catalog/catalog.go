// Package catalog: 맵/오브젝트 닫힌 집합을 제공하는 읽기 전용 카탈로그.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
)

//go:embed maps.yaml
var embeddedMaps []byte

type catalogFile struct {
	Maps []model.VirtualMap `yaml:"maps"`
}

// Catalog: mapKey → VirtualMap 조회 테이블. 생성 후 변경되지 않으므로 동시 읽기에 안전하다.
type Catalog struct {
	maps map[string]model.VirtualMap
}

// Load: 내장 맵 카탈로그를 로드합니다.
func Load() (*Catalog, error) {
	return Parse(embeddedMaps)
}

// LoadFile: 파일 경로가 주어지면 해당 YAML 을, 비어있으면 내장 카탈로그를 로드합니다.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Load()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map catalog failed: %w", err)
	}
	return Parse(raw)
}

// Parse: YAML 바이트를 카탈로그로 파싱하고 중복/빈 키를 검사합니다.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map catalog failed: %w", err)
	}
	if len(file.Maps) == 0 {
		return nil, errors.New("map catalog is empty")
	}

	maps := make(map[string]model.VirtualMap, len(file.Maps))
	for _, m := range file.Maps {
		if m.Key == "" {
			return nil, errors.New("map catalog: empty map key")
		}
		if _, dup := maps[m.Key]; dup {
			return nil, fmt.Errorf("map catalog: duplicate map key %s", m.Key)
		}
		seen := make(map[string]struct{}, len(m.Objects))
		for _, obj := range m.Objects {
			if obj.Key == "" {
				return nil, fmt.Errorf("map catalog: empty object key in map %s", m.Key)
			}
			if _, dup := seen[obj.Key]; dup {
				return nil, fmt.Errorf("map catalog: duplicate object %s in map %s", obj.Key, m.Key)
			}
			seen[obj.Key] = struct{}{}
		}
		maps[m.Key] = m
	}
	return &Catalog{maps: maps}, nil
}

// Map: mapKey 로 맵을 조회한다.
func (c *Catalog) Map(key string) (model.VirtualMap, bool) {
	m, ok := c.maps[key]
	return m, ok
}

// HasMap: mapKey 가 카탈로그에 있는지 확인한다.
func (c *Catalog) HasMap(key string) bool {
	_, ok := c.maps[key]
	return ok
}

// HasObject: objectKey 가 해당 맵의 오브젝트인지 확인한다.
func (c *Catalog) HasObject(mapKey, objectKey string) bool {
	m, ok := c.maps[mapKey]
	if !ok {
		return false
	}
	_, ok = m.Object(objectKey)
	return ok
}

// Maps: mapKey 오름차순으로 정렬된 전체 맵 목록
func (c *Catalog) Maps() []model.VirtualMap {
	keys := make([]string, 0, len(c.maps))
	for key := range c.maps {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]model.VirtualMap, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.maps[key])
	}
	return out
}
