package domain

import "math"

// Capacity целочисленная остаточная пропускная способность.
// Целые значения гарантируют завершение и точное накопление потока.
type Capacity = int64

// Граничные значения
const (
	// Unbounded начальное значение аккумулятора минимума вместо бесконечности
	Unbounded Capacity = math.MaxInt64

	// NoParent метка отсутствия предка в дереве BFS
	NoParent = -1
)

// ActionAugmentPath тип шага трассы
const ActionAugmentPath = "augment_path"

// Пороговые значения утилизации для статистики потока
const (
	CriticalUtilizationThreshold = 0.99
	HighUtilizationThreshold     = 0.95
	MediumUtilizationThreshold   = 0.90
)

// MinCapacity возвращает минимум двух значений
func MinCapacity(a, b Capacity) Capacity {
	if a < b {
		return a
	}
	return b
}

// AddSaturating складывает без переполнения int64
func AddSaturating(a, b Capacity) Capacity {
	if b > 0 && a > Unbounded-b {
		return Unbounded
	}
	return a + b
}
