package fuzztests

import (
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для корпуса
	maxFuzzInput = 256 << 10
)

var markerSeeds = []string{
	"package p\n",
	"package p\n\nvar _ = expect.Output(`x`)\n",
	"package p\n\n// lead\n\nfunc f() {}\n\n// trail\nvar _ = expect.Exact(\"y\\n\")\n",
	"package p\n\nimport \"fmt\"\n\nvar _ = expect.Part(`one`)\n\nfunc init() { fmt.Println(1) }\nvar _ = expect.Output(`1`)\n",
	"package p\n\nvar _ = expect.Doc(`notes`)\nvar _ = expect.Output(``)\nfunc g() {}\n",
	"package p\n\nvar _ = expect.Output(`a`, `b`)\n",
	"package p\n\nvar x = expect.Output(`a`)\n",
	"package p\n\nvar (\n\t_ = expect.Output(`a`)\n)\n",
	"package p\n\nfunc f() { _ = expect.Output(`inner`) }\n",
	"package p\n\nfunc f() {}\nvar _ = expect.Part(`late`)\n",
	"package p\r\n\r\nvar _ = expect.Output(`crlf`)\r\n",
	"\ufeffpackage p\n\nvar _ = expect.Exact(`bom`)\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range markerSeeds {
		f.Add(clampSeed([]byte(s)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		return src[:maxSeedBytes]
	}
	return src
}
