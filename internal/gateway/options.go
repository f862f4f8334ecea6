package gateway

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/DoyleJ11/ti-helper/pkg/types"
)

var selectContext = &html.Node{Type: html.ElementNode, Data: "select", DataAtom: atom.Select}

// parseOptions reads an <option> fragment. Entries with an empty value are
// placeholders or messages: they are dropped and the first one's text is
// returned as message.
func parseOptions(body []byte) ([]types.Option, string, error) {
	nodes, err := html.ParseFragment(bytes.NewReader(body), selectContext)
	if err != nil {
		return nil, "", err
	}

	var opts []types.Option
	var message string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			value := attr(n, "value")
			label := strings.TrimSpace(text(n))
			if value == "" {
				if message == "" {
					message = label
				}
				return
			}
			opts = append(opts, types.Option{ID: value, Label: label})
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return opts, message, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
