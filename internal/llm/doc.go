// Package llm provides clients for external language model APIs used to
// judge whether a proposed purchase is relevant to an account category.
package llm
