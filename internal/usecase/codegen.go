package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	codePrefix     = "MED"
	codeAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeSuffixSize = 6
)

// CodeGenerator mints product codes of the form MED-<base36 ms>-<6 base36>.
type CodeGenerator interface {
	Next(now time.Time) string
}

type nanoCodeGenerator struct {
	mu     sync.Mutex
	suffix func() string
}

func NewCodeGenerator() (CodeGenerator, error) {
	gen, err := nanoid.CustomASCII(codeAlphabet, codeSuffixSize)
	if err != nil {
		return nil, fmt.Errorf("init code generator: %w", err)
	}
	return &nanoCodeGenerator{suffix: gen}, nil
}

func (g *nanoCodeGenerator) Next(now time.Time) string {
	g.mu.Lock()
	suffix := g.suffix()
	g.mu.Unlock()

	ts := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper(codePrefix + "-" + ts + "-" + suffix)
}
