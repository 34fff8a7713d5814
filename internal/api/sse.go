package api

import (
	"encoding/json"
	"fmt"
	"io"
)

func writeSSE(w io.Writer, evt SSEEvent) {
	b, err := json.Marshal(evt.Data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\n", evt.Type)
	fmt.Fprintf(w, "data: %s\n\n", b)
}
