package templates

import (
	"strconv"
	"strings"
)

func prefixedStrings(prefix string, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString(prefix)
		sb.WriteString(strconv.Itoa(i))
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

func propertyParams(count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		n := strconv.Itoa(i)
		sb.WriteString("p" + n + " *Property[T" + n + "]")
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

func getCalls(count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString("p" + strconv.Itoa(i) + ".Get()")
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}
