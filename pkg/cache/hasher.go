package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"flowtrace/pkg/domain"
)

// KeyPrefix общий префикс ключей трасс
const KeyPrefix = "flowtrace:run:"

// RunKeyInput всё, от чего зависит результат запуска.
// Снимки остаточной сети в ключ не входят: трасса без снимков получается из полной.
type RunKeyInput struct {
	Matrix        domain.Matrix
	Source        int
	Sink          int
	RecordPaths   bool
	MaxIterations int
}

// MatrixHash sha256 канонического представления матрицы и параметров запуска.
// Числа пишутся фиксированной ширины, поэтому разные матрицы не склеиваются в одну строку.
func MatrixHash(in RunKeyInput) string {
	h := sha256.New()
	var buf [8]byte

	write := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	flag := func(b bool) int64 {
		if b {
			return 1
		}
		return 0
	}

	write(int64(len(in.Matrix)))
	write(int64(in.Source))
	write(int64(in.Sink))
	write(flag(in.RecordPaths))
	write(int64(in.MaxIterations))
	for _, row := range in.Matrix {
		write(int64(len(row)))
		for _, c := range row {
			write(c)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// RunKey ключ кэша для трассы
func RunKey(in RunKeyInput) string {
	return KeyPrefix + MatrixHash(in)
}

// ShortHash короткий хеш (16 символов) для логов
func ShortHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
