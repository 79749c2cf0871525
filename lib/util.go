package lib

import (
	"path/filepath"
	"strconv"
)

// IndexFileName. nama file index = nama file relasi + "." + nomor index.
func IndexFileName(fileName string, indexNo int) string {
	return fileName + "." + strconv.Itoa(indexNo)
}

// DBPath. join name under dir unless name is already absolute.
func DBPath(dir, name string) string {
	if dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
