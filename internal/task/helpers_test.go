package task

import "os"

func writeScript(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o755)
}
