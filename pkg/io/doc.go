// Package io reads and writes rule set documents.
//
// A rule set is the output of a discovery run: the prioritized rules plus
// the batch statistics and the dependencies that failed.
//
//	{
//	  "generatedAt": "2025-01-02T15:04:05Z",
//	  "stats": {"processed": 2, "successful": 1, "failed": 0, "totalRules": 1},
//	  "rules": [
//	    {"id": "…", "name": "react llms.txt", "confidence": 0.9, "source": "direct", ...}
//	  ]
//	}
//
// Use [WriteJSON]/[ExportJSON] to write and [ReadJSON]/[ImportJSON] to read.
// Reading validates every rule, so a hand-edited file with a missing ID or an
// out-of-range confidence is rejected with the offending index.
//
// [WriteMarkdown] renders the same document for humans; the CLI pipes it
// through a terminal markdown renderer.
package io
