// Package numeric holds the small numerical kernels shared by the projection
// engine and the approximation models: a singular value decomposition with a
// least-squares solver, a cubic spline with a circular-longitude mode, and a
// tridiagonal solver.
package numeric

import (
	"errors"
	"fmt"
	"math"
)

// svdMaxIterations bounds the implicit-shift QR sweeps per singular value.
const svdMaxIterations = 30

// ConvergenceError reports that an iterative routine exhausted its iteration
// budget. The computed result is still returned alongside it as the best
// available estimate; callers decide whether to accept or discard it.
type ConvergenceError struct {
	Routine    string
	Index      int // singular value index, or -1 when not applicable
	Iterations int
}

func (e *ConvergenceError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: singular value %d did not converge after %d iterations",
			e.Routine, e.Index, e.Iterations)
	}
	return fmt.Sprintf("%s: did not converge after %d iterations", e.Routine, e.Iterations)
}

// SVD computes the singular value decomposition a = U·diag(w)·Vᵀ of an m×n
// matrix with m >= n, using Householder bidiagonalization followed by
// implicit-shift QR diagonalization. U is m×n with orthonormal columns, V is
// n×n orthogonal, and w holds the n singular values (unordered).
//
// When a singular value fails to converge within the iteration budget the
// decomposition so far is still returned, together with a *ConvergenceError.
func SVD(a [][]float64) (u [][]float64, w []float64, v [][]float64, err error) {
	m := len(a)
	if m == 0 || len(a[0]) == 0 {
		return nil, nil, nil, errors.New("svd: empty matrix")
	}
	n := len(a[0])
	if m < n {
		return nil, nil, nil, fmt.Errorf("svd: need rows >= columns, got %dx%d", m, n)
	}

	u = make([][]float64, m)
	for i := range u {
		if len(a[i]) != n {
			return nil, nil, nil, fmt.Errorf("svd: ragged matrix at row %d", i)
		}
		u[i] = append([]float64(nil), a[i]...)
	}
	w = make([]float64, n)
	v = make([][]float64, n)
	for i := range v {
		v[i] = make([]float64, n)
	}
	rv1 := make([]float64, n)

	// Householder reduction to bidiagonal form.
	var g, scale, anorm float64
	for i := 0; i < n; i++ {
		l := i + 1
		rv1[i] = scale * g
		g, scale = 0, 0
		if i < m {
			for k := i; k < m; k++ {
				scale += math.Abs(u[k][i])
			}
			if scale != 0 {
				var s float64
				for k := i; k < m; k++ {
					u[k][i] /= scale
					s += u[k][i] * u[k][i]
				}
				f := u[i][i]
				g = -math.Copysign(math.Sqrt(s), f)
				h := f*g - s
				u[i][i] = f - g
				for j := l; j < n; j++ {
					var s float64
					for k := i; k < m; k++ {
						s += u[k][i] * u[k][j]
					}
					f := s / h
					for k := i; k < m; k++ {
						u[k][j] += f * u[k][i]
					}
				}
				for k := i; k < m; k++ {
					u[k][i] *= scale
				}
			}
		}
		w[i] = scale * g
		g, scale = 0, 0
		if i < m && i != n-1 {
			for k := l; k < n; k++ {
				scale += math.Abs(u[i][k])
			}
			if scale != 0 {
				var s float64
				for k := l; k < n; k++ {
					u[i][k] /= scale
					s += u[i][k] * u[i][k]
				}
				f := u[i][l]
				g = -math.Copysign(math.Sqrt(s), f)
				h := f*g - s
				u[i][l] = f - g
				for k := l; k < n; k++ {
					rv1[k] = u[i][k] / h
				}
				for j := l; j < m; j++ {
					var s float64
					for k := l; k < n; k++ {
						s += u[j][k] * u[i][k]
					}
					for k := l; k < n; k++ {
						u[j][k] += s * rv1[k]
					}
				}
				for k := l; k < n; k++ {
					u[i][k] *= scale
				}
			}
		}
		anorm = math.Max(anorm, math.Abs(w[i])+math.Abs(rv1[i]))
	}

	// Accumulate right-hand transformations.
	for i := n - 1; i >= 0; i-- {
		l := i + 1
		if i < n-1 {
			if g != 0 {
				// Double division avoids possible underflow.
				for j := l; j < n; j++ {
					v[j][i] = (u[i][j] / u[i][l]) / g
				}
				for j := l; j < n; j++ {
					var s float64
					for k := l; k < n; k++ {
						s += u[i][k] * v[k][j]
					}
					for k := l; k < n; k++ {
						v[k][j] += s * v[k][i]
					}
				}
			}
			for j := l; j < n; j++ {
				v[i][j], v[j][i] = 0, 0
			}
		}
		v[i][i] = 1
		g = rv1[i]
	}

	// Accumulate left-hand transformations.
	for i := n - 1; i >= 0; i-- {
		l := i + 1
		g := w[i]
		for j := l; j < n; j++ {
			u[i][j] = 0
		}
		if g != 0 {
			g = 1 / g
			for j := l; j < n; j++ {
				var s float64
				for k := l; k < m; k++ {
					s += u[k][i] * u[k][j]
				}
				f := (s / u[i][i]) * g
				for k := i; k < m; k++ {
					u[k][j] += f * u[k][i]
				}
			}
			for j := i; j < m; j++ {
				u[j][i] *= g
			}
		} else {
			for j := i; j < m; j++ {
				u[j][i] = 0
			}
		}
		u[i][i]++
	}

	// Diagonalize the bidiagonal form.
	for k := n - 1; k >= 0; k-- {
		for its := 1; its <= svdMaxIterations; its++ {
			flag := true
			var l, nm int
			for l = k; l >= 0; l-- {
				nm = l - 1
				// rv1[0] is always zero, so this test always succeeds
				// before nm would go negative.
				if math.Abs(rv1[l])+anorm == anorm {
					flag = false
					break
				}
				if math.Abs(w[nm])+anorm == anorm {
					break
				}
			}
			if flag {
				// Cancel rv1[l] with a sequence of Givens rotations.
				c, s := 0.0, 1.0
				for i := l; i <= k; i++ {
					f := s * rv1[i]
					rv1[i] = c * rv1[i]
					if math.Abs(f)+anorm == anorm {
						break
					}
					g := w[i]
					h := math.Hypot(f, g)
					w[i] = h
					h = 1 / h
					c = g * h
					s = -f * h
					for j := 0; j < m; j++ {
						y := u[j][nm]
						z := u[j][i]
						u[j][nm] = y*c + z*s
						u[j][i] = z*c - y*s
					}
				}
			}
			z := w[k]
			if l == k {
				// Converged; enforce a non-negative singular value.
				if z < 0 {
					w[k] = -z
					for j := 0; j < n; j++ {
						v[j][k] = -v[j][k]
					}
				}
				break
			}
			if its == svdMaxIterations {
				// Keep the current estimate and move on; the caller sees
				// a ConvergenceError and chooses whether to accept it.
				err = &ConvergenceError{Routine: "svd", Index: k, Iterations: its}
				break
			}

			// Implicit-shift QR step from the trailing 2x2 minor.
			x := w[l]
			nm = k - 1
			y := w[nm]
			g := rv1[nm]
			h := rv1[k]
			f := ((y-z)*(y+z) + (g-h)*(g+h)) / (2 * h * y)
			g = math.Hypot(f, 1)
			f = ((x-z)*(x+z) + h*(y/(f+math.Copysign(g, f))-h)) / x
			c, s := 1.0, 1.0
			for j := l; j <= nm; j++ {
				i := j + 1
				g := rv1[i]
				y := w[i]
				h := s * g
				g = c * g
				z := math.Hypot(f, h)
				rv1[j] = z
				c = f / z
				s = h / z
				f = x*c + g*s
				g = g*c - x*s
				h = y * s
				y *= c
				for jj := 0; jj < n; jj++ {
					xv := v[jj][j]
					zv := v[jj][i]
					v[jj][j] = xv*c + zv*s
					v[jj][i] = zv*c - xv*s
				}
				z = math.Hypot(f, h)
				w[j] = z
				if z != 0 {
					z = 1 / z
					c = f * z
					s = h * z
				}
				f = c*g + s*y
				x = c*y - s*g
				for jj := 0; jj < m; jj++ {
					yv := u[jj][j]
					zv := u[jj][i]
					u[jj][j] = yv*c + zv*s
					u[jj][i] = zv*c - yv*s
				}
			}
			rv1[l] = 0
			rv1[k] = f
			w[k] = x
		}
	}
	return u, w, v, err
}

// SVDSolve solves the least-squares system a·x = b given the decomposition
// returned by SVD. Singular values below tol·max(w) are treated as zero;
// tol <= 0 selects a default of 1e-12.
func SVDSolve(u [][]float64, w []float64, v [][]float64, b []float64, tol float64) ([]float64, error) {
	m, n := len(u), len(w)
	if len(b) != m {
		return nil, fmt.Errorf("svd solve: rhs length %d, want %d", len(b), m)
	}
	if tol <= 0 {
		tol = 1e-12
	}
	wmax := 0.0
	for _, wj := range w {
		wmax = math.Max(wmax, wj)
	}
	thresh := tol * wmax

	// tmp = diag(1/w)·Uᵀ·b with small singular values zeroed.
	tmp := make([]float64, n)
	for j := 0; j < n; j++ {
		if w[j] <= thresh {
			continue
		}
		var s float64
		for i := 0; i < m; i++ {
			s += u[i][j] * b[i]
		}
		tmp[j] = s / w[j]
	}

	x := make([]float64, n)
	for j := 0; j < n; j++ {
		var s float64
		for k := 0; k < n; k++ {
			s += v[j][k] * tmp[k]
		}
		x[j] = s
	}
	return x, nil
}
