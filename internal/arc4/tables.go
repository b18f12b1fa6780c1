package arc4

// Parameter tables for the linear congruential S-block seeding.
// Every multiplier a satisfies (a-1) % 4 == 0 and every increment c is
// prime, which together give the generator a full period of 256.

var lcrMultipliers = [61]byte{
	0x09, 0x0D, 0x11, 0x15, 0x19, 0x1D, 0x21, 0x25,
	0x29, 0x2D, 0x31, 0x35, 0x39, 0x3D, 0x41, 0x45,
	0x49, 0x4D, 0x51, 0x55, 0x59, 0x5D, 0x61, 0x65,
	0x69, 0x6D, 0x71, 0x75, 0x79, 0x7D, 0x81, 0x85,
	0x89, 0x8D, 0x91, 0x95, 0x99, 0x9D, 0xA1, 0xA5,
	0xA9, 0xAD, 0xB1, 0xB5, 0xB9, 0xBD, 0xC1, 0xC5,
	0xC9, 0xCD, 0xD1, 0xD5, 0xD9, 0xDD, 0xE1, 0xE5,
	0xE9, 0xED, 0xF1, 0xF5, 0xF9,
}

var lcrIncrements = [52]byte{
	0x05, 0x07, 0x0B, 0x0D, 0x11, 0x13, 0x17, 0x1D,
	0x1F, 0x25, 0x29, 0x2B, 0x2F, 0x35, 0x3B, 0x3D,
	0x43, 0x47, 0x49, 0x4F, 0x53, 0x59, 0x61, 0x65,
	0x67, 0x6B, 0x6D, 0x71, 0x7F, 0x83, 0x89, 0x8B,
	0x95, 0x97, 0x9D, 0xA3, 0xA7, 0xAD, 0xB3, 0xB5,
	0xBF, 0xC1, 0xC5, 0xC7, 0xD3, 0xDF, 0xE3, 0xE5,
	0xE9, 0xEF, 0xF1, 0xFB,
}
