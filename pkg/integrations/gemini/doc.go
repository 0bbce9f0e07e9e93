// Package gemini wraps the Gemini API (google.golang.org/genai) for
// structured JSON completions.
//
// # Usage
//
//	client, err := gemini.NewClient(ctx, gemini.Options{APIKey: key})
//	if err != nil {
//	    return err
//	}
//	raw, err := client.Complete(ctx, prompt, gemini.ObjectSchema("rule"))
//
// Requests run in JSON mode with an optional response schema. Each call has
// its own timeout (Options.Timeout, default 60s); rate limits and 5xx
// responses are retried with the httputil default policy. A response that
// is empty or not valid JSON is reported as MODEL_INFERENCE_ERROR.
package gemini
