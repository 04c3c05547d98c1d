package domain

import (
	"errors"
	"fmt"
)

// Ошибки валидации матрицы пропускных способностей
var (
	ErrMalformedMatrix  = errors.New("malformed capacity matrix")
	ErrNegativeCapacity = errors.New("negative capacity")
	ErrCapacityOverflow = errors.New("capacity sum overflows int64")
)

// Matrix квадратная матрица пропускных способностей, m[u][v] - ёмкость u->v
type Matrix [][]Capacity

// Size возвращает число вершин
func (m Matrix) Size() int {
	return len(m)
}

// Validate проверяет форму, знак и суммы значений.
// Пустая, неквадратная или рваная матрица - ErrMalformedMatrix, отрицательное значение - ErrNegativeCapacity.
// Если сумма исходящих ёмкостей вершины или пара m[u][v]+m[v][u] не помещается в int64 - ErrCapacityOverflow:
// первая ограничивает накопленный поток, вторая сохраняется при каждом обновлении остаточной сети.
func (m Matrix) Validate() error {
	n := len(m)
	if n == 0 {
		return fmt.Errorf("%w: matrix has no rows", ErrMalformedMatrix)
	}

	for u, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrMalformedMatrix, u, len(row), n)
		}
	}

	for u, row := range m {
		for v, c := range row {
			if c < 0 {
				return fmt.Errorf("%w: capacity[%d][%d] = %d", ErrNegativeCapacity, u, v, c)
			}
		}
	}

	for u, row := range m {
		var out Capacity
		for v, c := range row {
			if c > Unbounded-out {
				return fmt.Errorf("%w: out-capacity of vertex %d", ErrCapacityOverflow, u)
			}
			out += c
			if v > u && c > Unbounded-m[v][u] {
				return fmt.Errorf("%w: capacity[%d][%d] + capacity[%d][%d]", ErrCapacityOverflow, u, v, v, u)
			}
		}
	}

	return nil
}

// Clone возвращает независимую глубокую копию
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = make([]Capacity, len(row))
		copy(out[i], row)
	}
	return out
}

// Equal сравнивает матрицы поэлементно
func (m Matrix) Equal(other Matrix) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(other[i]) {
			return false
		}
		for j := range m[i] {
			if m[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// EdgeCount число рёбер с положительной ёмкостью
func (m Matrix) EdgeCount() int {
	count := 0
	for _, row := range m {
		for _, c := range row {
			if c > 0 {
				count++
			}
		}
	}
	return count
}

// OutCapacity суммарная ёмкость исходящих рёбер u
func (m Matrix) OutCapacity(u int) Capacity {
	var total Capacity
	for _, c := range m[u] {
		total = AddSaturating(total, c)
	}
	return total
}

// Edge ребро исходной сети
type Edge struct {
	From     int      `json:"from"`
	To       int      `json:"to"`
	Capacity Capacity `json:"capacity"`
}

// Edges перечисляет рёбра в порядке (from, to)
func (m Matrix) Edges() []Edge {
	edges := make([]Edge, 0, m.EdgeCount())
	for u, row := range m {
		for v, c := range row {
			if c > 0 {
				edges = append(edges, Edge{From: u, To: v, Capacity: c})
			}
		}
	}
	return edges
}

// FromEdges строит матрицу n×n из списка рёбер. Параллельные рёбра суммируются.
func FromEdges(n int, edges []Edge) (Matrix, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: vertex count must be positive, got %d", ErrMalformedMatrix, n)
	}
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]Capacity, n)
	}
	for i, e := range edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return nil, fmt.Errorf("%w: edge %d (%d->%d) outside [0, %d)", ErrMalformedMatrix, i, e.From, e.To, n)
		}
		if e.Capacity < 0 {
			return nil, fmt.Errorf("%w: edge %d (%d->%d) = %d", ErrNegativeCapacity, i, e.From, e.To, e.Capacity)
		}
		m[e.From][e.To] = AddSaturating(m[e.From][e.To], e.Capacity)
	}
	return m, nil
}
