package exporter

import "strconv"

func intString(v int) string { return strconv.Itoa(v) }

func int64String(v int64) string { return strconv.FormatInt(v, 10) }
