package domain

import (
	"iter"
	"sort"
	"strings"

	"github.com/google/btree"
)

const levelsBTreeDegree = 32

// bidLess 买方执行优先级：价格降序、数量降序、来源升序
func bidLess(a, b PriceLevel) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c > 0
	}
	return tieBreakLess(a, b)
}

// offerLess 卖方执行优先级：价格升序、数量降序、来源升序
func offerLess(a, b PriceLevel) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	return tieBreakLess(a, b)
}

func tieBreakLess(a, b PriceLevel) bool {
	if a.Quantity != b.Quantity {
		return a.Quantity > b.Quantity
	}
	return strings.Compare(a.Source, b.Source) < 0
}

// bookSide 单边订单簿：按来源分组的档位 + 全局有序视图
// 有序视图的成员恒等于所有来源档位的并集
type bookSide struct {
	levels   *btree.BTreeG[PriceLevel]
	bySource map[string]map[string]PriceLevel
}

func newBookSide(less btree.LessFunc[PriceLevel]) *bookSide {
	return &bookSide{
		levels:   btree.NewG(levelsBTreeDegree, less),
		bySource: make(map[string]map[string]PriceLevel),
	}
}

// replace 用 incoming 整体替换 source 在本边的档位，incoming 为空等同于撤销该来源
func (s *bookSide) replace(source string, incoming map[string]PriceLevel) {
	for _, level := range s.bySource[source] {
		s.levels.Delete(level)
	}
	delete(s.bySource, source)

	if len(incoming) == 0 {
		return
	}
	s.bySource[source] = incoming
	for _, level := range incoming {
		s.levels.ReplaceOrInsert(level)
	}
}

func (s *bookSide) clear() {
	s.levels.Clear(false)
	s.bySource = make(map[string]map[string]PriceLevel)
}

// all 按执行优先级遍历档位
func (s *bookSide) all() iter.Seq[PriceLevel] {
	return func(yield func(PriceLevel) bool) {
		s.levels.Ascend(yield)
	}
}

func (s *bookSide) snapshot() []PriceLevel {
	out := make([]PriceLevel, 0, s.levels.Len())
	s.levels.Ascend(func(level PriceLevel) bool {
		out = append(out, level)
		return true
	})
	return out
}

func (s *bookSide) sources() []string {
	out := make([]string, 0, len(s.bySource))
	for source := range s.bySource {
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}
