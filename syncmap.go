package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type syncMap[K comparable, V any] struct {
	m sync.Map
}

func (m *syncMap[K, V]) String() string {
	entries := []string{}
	m.Range(func(key K, value V) bool {
		entries = append(entries, "\t"+fmt.Sprint(key)+": "+fmt.Sprint(value)+",\n")
		return true
	})
	sort.Strings(entries)
	return "{\n" + strings.Join(entries, "") + "}"
}

func (m *syncMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.m.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

func (m *syncMap[K, V]) Set(key K, value V) {
	m.m.Store(key, value)
}

func (m *syncMap[K, V]) Delete(key K) {
	m.m.Delete(key)
}

// Range stops when f returns false.
func (m *syncMap[K, V]) Range(f func(K, V) bool) {
	m.m.Range(func(key, value any) bool {
		return f(key.(K), value.(V))
	})
}

func (m *syncMap[K, V]) Len() int {
	n := 0
	m.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
