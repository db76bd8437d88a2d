package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Синтаксис: ошибки внешнего парсера
	SynInfo       Code = 2000
	SynParseError Code = 2001

	// Маркеры
	MarkInfo           Code = 3000
	MarkConflicting    Code = 3001
	MarkMisplacedPart  Code = 3002
	MarkUnhandledShape Code = 3003
	MarkNestedIgnored  Code = 3004
	MarkRedeclaredPart Code = 3005
	MarkLeftoverCode   Code = 3006

	// Диапазоны (реконструкция)
	SpanInfo          Code = 3500
	SpanOverlap       Code = 3501
	SpanNotRoundTrip  Code = 3502
	SpanInternalError Code = 3599

	// I/O
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Проект / конфигурация
	ProjInfo          Code = 5000
	ProjConfigInvalid Code = 5001
	ProjNoMarkerFiles Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	SynInfo:       "Syntax information",
	SynParseError: "Source file does not parse",

	MarkInfo:           "Marker information",
	MarkConflicting:    "Unit matches several marker shapes",
	MarkMisplacedPart:  "Part label after accumulated code",
	MarkUnhandledShape: "Marker declaration has an unsupported shape",
	MarkNestedIgnored:  "Marker-shaped call inside another declaration is ignored",
	MarkRedeclaredPart: "Part label repeats the current part",
	MarkLeftoverCode:   "Code after the last assertion",

	SpanInfo:          "Span information",
	SpanOverlap:       "Overlapping spans",
	SpanNotRoundTrip:  "Printed blocks differ from the source",
	SpanInternalError: "Internal reconstruction error",

	IOInfo:          "I/O information",
	IOLoadFileError: "I/O load file error",
	IOCacheError:    "Result cache error",

	ProjInfo:          "Project information",
	ProjConfigInvalid: "Invalid markspan.toml",
	ProjNoMarkerFiles: "No marker files found",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 3500:
		return fmt.Sprintf("MRK%04d", ic)
	case ic >= 3500 && ic < 4000:
		return fmt.Sprintf("SPN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
