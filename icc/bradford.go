package icc

// Bradford cone response matrix, row-major.
var bradford = [9]float64{
	0.8951, 0.2664, -0.1614,
	-0.7502, 1.7135, 0.0367,
	0.0389, -0.0685, 1.0296,
}

// BradfordAdaptation builds the row-major 3x3 chromatic adaptation matrix
// mapping XYZ tristimulus values referenced to srcWhite onto dstWhite:
// inv(M_B) * diag(dstCone/srcCone) * M_B. Equal white points yield the
// identity matrix up to floating-point error.
func BradfordAdaptation(srcWhite, dstWhite [3]float64) [9]float64 {
	srcCone := mulVec(bradford, srcWhite)
	dstCone := mulVec(bradford, dstWhite)

	scaled := bradford
	for row := 0; row < 3; row++ {
		s := dstCone[row] / srcCone[row]
		for col := 0; col < 3; col++ {
			scaled[row*3+col] *= s
		}
	}
	return mulMat(inv3(bradford), scaled)
}

func mulVec(m [9]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

func mulMat(a, b [9]float64) [9]float64 {
	var out [9]float64
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out[row*3+col] = a[row*3]*b[col] + a[row*3+1]*b[3+col] + a[row*3+2]*b[6+col]
		}
	}
	return out
}

// inv3 inverts a 3x3 matrix via its adjugate.
func inv3(m [9]float64) [9]float64 {
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])

	inv := [9]float64{
		m[4]*m[8] - m[5]*m[7], m[2]*m[7] - m[1]*m[8], m[1]*m[5] - m[2]*m[4],
		m[5]*m[6] - m[3]*m[8], m[0]*m[8] - m[2]*m[6], m[2]*m[3] - m[0]*m[5],
		m[3]*m[7] - m[4]*m[6], m[1]*m[6] - m[0]*m[7], m[0]*m[4] - m[1]*m[3],
	}
	for i := range inv {
		inv[i] /= det
	}
	return inv
}
