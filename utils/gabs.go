package utils

import (
	"github.com/Jeffail/gabs"
)

/*
	Nil-safe accessors over gabs containers: FHIR documents are full
	of optional sub-structures, and walking them should never panic
	on an absent branch.
*/

func JsonChildren(container *gabs.Container, hierarchy ...string) []*gabs.Container {
	if container == nil {
		return nil
	}
	node := container.S(hierarchy...)
	if node == nil {
		return nil
	}
	children, err := node.Children()
	if err != nil {
		return nil
	}
	return children
}

func JsonString(container *gabs.Container, hierarchy ...string) string {
	if container == nil {
		return ""
	}
	node := container.S(hierarchy...)
	if node == nil {
		return ""
	}
	if v, ok := node.Data().(string); ok {
		return v
	}
	return ""
}

func JsonFloat(container *gabs.Container, hierarchy ...string) (float64, bool) {
	if container == nil {
		return 0, false
	}
	node := container.S(hierarchy...)
	if node == nil {
		return 0, false
	}
	v, ok := node.Data().(float64)
	return v, ok
}
