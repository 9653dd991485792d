package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type recognitionAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type recognitionResponse struct {
	Alternatives []recognitionAlternative `json:"alternatives"`
}

func recognizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := r.ParseMultipartForm(60 << 20) // 60 MB, above the payload cap
	if err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	encoding := r.FormValue("encoding")
	sampleRate := r.FormValue("sample_rate")
	channelCount := r.FormValue("channel_count")
	language := r.FormValue("language")
	punctuation := r.FormValue("automatic_punctuation")
	altLanguages := r.FormValue("alternative_languages")
	phraseHints := r.Form["phrase_hint"]

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error getting audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	log.Printf("RECOGNITION REQUEST RECEIVED:")
	log.Printf("  Filename: %s", header.Filename)
	log.Printf("  Size: %d bytes", header.Size)
	log.Printf("  Encoding: %s", encoding)
	log.Printf("  Sample rate: %s", sampleRate)
	log.Printf("  Channels: %s", channelCount)
	log.Printf("  Language: %s (alternatives: %s)", language, altLanguages)
	log.Printf("  Automatic punctuation: %s", punctuation)
	log.Printf("  Phrase hints: %d", len(phraseHints))

	// Simulate processing time
	time.Sleep(200 * time.Millisecond)

	// Canned answering machine greeting so end-to-end runs exercise detection
	response := recognitionResponse{
		Alternatives: []recognitionAlternative{
			{Transcript: "Hi, you have reached the voicemail of John. Please leave a message after the tone.", Confidence: 0.95},
			{Transcript: "Hi, you've reached the voice mail of John. Please leave a message after the tone.", Confidence: 0.82},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)

	log.Printf("RECOGNITION RESPONSE SENT: %d alternatives", len(response.Alternatives))
	log.Println("---")
}

func main() {
	http.HandleFunc("/recognize", recognizeHandler)

	port := ":9000"
	log.Printf("Test recognition server starting on port %s", port)
	log.Printf("Endpoint: http://localhost%s/recognize", port)
	log.Println("Update your config to use: http://localhost:9000/recognize")

	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
