package utils

import "os/exec"

// CheckBinary 检查可执行文件是否在PATH中
func CheckBinary(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// CheckPiper 检查piper是否已安装
func CheckPiper() bool {
	return CheckBinary("piper")
}
