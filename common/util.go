package common

import "hash/fnv"

// GenerateIDFromPath takes an absolute path and converts it into a numeric ID;
// used by the driver to dedupe roots reached via more than one source-root
// glob for the same underlying file.
func GenerateIDFromPath(abspath string) uint {
	h := fnv.New32a()
	h.Write([]byte(abspath))
	return uint(h.Sum32())
}
