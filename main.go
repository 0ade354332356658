// ./main.go
package main

import (
	"github.com/xkilldash9x/navigator/cmd"
)

func main() {
	cmd.Execute()
}
