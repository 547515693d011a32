package main

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// newClient builds a resty client for the service, attaching the bearer
// token when present.
func newClient() *resty.Client {
	c := resty.New().SetBaseURL(apiFlag).SetHeader("Content-Type", "application/json")
	if tokenFlag != "" {
		c.SetAuthToken(tokenFlag)
	}
	return c
}

func doGet(path string) (string, error) {
	resp, err := newClient().R().Get(path)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.String(), nil
}

func doPostJSON(path string, payload interface{}) (string, error) {
	resp, err := newClient().R().SetBody(payload).Post(path)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.String(), nil
}

func doDelete(path string) (string, error) {
	resp, err := newClient().R().Delete(path)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.String(), nil
}
