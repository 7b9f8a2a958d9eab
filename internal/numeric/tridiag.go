package numeric

import "errors"

// TriDiag solves the tridiagonal system
//
//	| b0 c0          |   | out0 |   | r0 |
//	| a1 b1 c1       |   | out1 |   | r1 |
//	|    ..          | * | ..   | = | .. |
//	|       an-1 bn-1|   | outn |   | rn |
//
// in place in out using the Thomas algorithm. a[0] and c[n-1] are unused.
func TriDiag(as, bs, cs, rs, out []float64) error {
	n := len(as)
	if len(bs) != n || len(cs) != n || len(rs) != n || len(out) != n {
		return errors.New("tridiag: argument lengths differ")
	}
	if n == 0 {
		return nil
	}

	tmp := make([]float64, n)
	beta := bs[0]
	if beta == 0 {
		return errors.New("tridiag: zero pivot")
	}
	out[0] = rs[0] / beta

	for i := 1; i < n; i++ {
		tmp[i] = cs[i-1] / beta
		beta = bs[i] - as[i]*tmp[i]
		if beta == 0 {
			return errors.New("tridiag: zero pivot")
		}
		out[i] = (rs[i] - as[i]*out[i-1]) / beta
	}
	for i := n - 2; i >= 0; i-- {
		out[i] -= tmp[i+1] * out[i+1]
	}
	return nil
}
