package chem

// atomicNumbers maps element symbols to atomic numbers
var atomicNumbers = map[string]int{
	"H": 1, "He": 2, "Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8, "F": 9, "Ne": 10,
	"Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15, "S": 16, "Cl": 17, "Ar": 18,
	"K": 19, "Ca": 20, "Ti": 22, "Cr": 24, "Mn": 25, "Fe": 26, "Co": 27, "Ni": 28,
	"Cu": 29, "Zn": 30, "Ga": 31, "Ge": 32, "As": 33, "Se": 34, "Br": 35, "Kr": 36,
	"Rb": 37, "Sr": 38, "Zr": 40, "Mo": 42, "Ru": 44, "Rh": 45, "Pd": 46, "Ag": 47,
	"Cd": 48, "In": 49, "Sn": 50, "Sb": 51, "Te": 52, "I": 53, "Xe": 54, "Cs": 55,
	"Ba": 56, "W": 74, "Os": 76, "Ir": 77, "Pt": 78, "Au": 79, "Hg": 80, "Tl": 81,
	"Pb": 82, "Bi": 83,
}

// defaultValences lists the normal valences used to derive implicit hydrogens
// for atoms written without brackets
var defaultValences = map[int][]int{
	5:  {3},
	6:  {4},
	7:  {3, 5},
	8:  {2},
	9:  {1},
	15: {3, 5},
	16: {2, 4, 6},
	17: {1},
	35: {1},
	53: {1},
}

// organicSubset holds the symbols that may appear outside brackets
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSymbols holds the lowercase symbols accepted as aromatic atoms
var aromaticSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S", "se": "Se", "as": "As",
}

func isHeteroatom(number int) bool {
	return number != 6 && number != 1 && number != 0
}
