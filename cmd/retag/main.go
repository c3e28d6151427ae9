package main

import (
	// Register Plugins via side-effects
	_ "retag/internal/collectors/file"
	_ "retag/internal/collectors/http"
	_ "retag/internal/collectors/telegram"
	_ "retag/internal/publishers/file"
	_ "retag/internal/publishers/github"
	_ "retag/internal/publishers/stdout"
)

func main() {
	Execute()
}
