package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	token := os.Getenv("API_TOKEN")
	if token == "" {
		color.Red("API_TOKEN is not set")
		os.Exit(1)
	}

	color.Cyan("Starting Chat Streaming Smoke Test\n")

	// 1. Create a conversation
	color.Yellow("\n1. Create Conversation")
	resp, body, err := sendRequest("POST", "/chat/v1/sessions", token, map[string]interface{}{})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var createResp map[string]interface{}
	json.Unmarshal(body, &createResp)
	prettyPrint(createResp)

	var conversationID string
	if data, ok := createResp["data"].(map[string]interface{}); ok {
		if id, ok := data["id"].(string); ok {
			conversationID = id
		}
	}
	if conversationID == "" {
		color.Red("No conversation id in response")
		os.Exit(1)
	}

	// 2. Stream a chat turn, printing think and visible chunks separately
	color.Yellow("\n2. Stream Chat Turn")
	streamBody, _ := json.Marshal(map[string]interface{}{"content": "Explain how SSE works in two sentences."})
	req, err := http.NewRequest("POST", baseURL+"/chat/v1/sessions/"+conversationID+"/messages/stream", bytes.NewBuffer(streamBody))
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	streamResp, err := (&http.Client{}).Do(req)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	defer streamResp.Body.Close()
	color.Green("Status: %s", streamResp.Status)

	scanner := bufio.NewScanner(streamResp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	currentEvent := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			switch currentEvent {
			case "think":
				color.HiBlack("%s", data)
			case "error":
				color.Red("\n[error] %s", data)
			case "done":
				color.Cyan("\n[done] %s", data)
			default:
				fmt.Print(data)
			}
		case line == "":
			currentEvent = ""
		}
	}
	if err := scanner.Err(); err != nil {
		color.Red("Stream read error: %v", err)
		os.Exit(1)
	}

	// 3. Fetch the transcript back
	color.Yellow("\n\n3. List Messages")
	resp, body, err = sendRequest("GET", "/chat/v1/sessions/"+conversationID+"/messages", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var listResp map[string]interface{}
	json.Unmarshal(body, &listResp)
	prettyPrint(listResp)

	color.Cyan("\nSmoke test finished")
}
