package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidEndpoint источник или сток вне диапазона вершин
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Network именованная сеть с выбранными источником и стоком
type Network struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Matrix      Matrix `json:"matrix"`
	Source      int    `json:"source"`
	Sink        int    `json:"sink"`
}

// Validate проверяет матрицу и попадание source/sink в [0, n)
func (n *Network) Validate() error {
	if err := n.Matrix.Validate(); err != nil {
		return err
	}
	size := n.Matrix.Size()
	if n.Source < 0 || n.Source >= size {
		return fmt.Errorf("%w: source %d not in [0, %d)", ErrInvalidEndpoint, n.Source, size)
	}
	if n.Sink < 0 || n.Sink >= size {
		return fmt.Errorf("%w: sink %d not in [0, %d)", ErrInvalidEndpoint, n.Sink, size)
	}
	return nil
}
