// Package authz 提供授权来源集合：静态配置与 Redis 动态集合
package authz

import (
	"sort"

	"github.com/wyfcoding/pricebook/internal/pricebook/application"
)

// StaticSourceSet 配置文件中的固定授权来源
type StaticSourceSet struct {
	sources map[string]struct{}
}

var _ application.SourceAuthorizer = (*StaticSourceSet)(nil)

// NewStaticSourceSet 创建静态授权来源集合
func NewStaticSourceSet(sources ...string) *StaticSourceSet {
	set := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		set[s] = struct{}{}
	}
	return &StaticSourceSet{sources: set}
}

// IsAuthorized 判断来源是否在集合中
func (s *StaticSourceSet) IsAuthorized(source string) bool {
	_, ok := s.sources[source]
	return ok
}

// Sources 返回授权来源（升序）
func (s *StaticSourceSet) Sources() []string {
	out := make([]string, 0, len(s.sources))
	for source := range s.sources {
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}
