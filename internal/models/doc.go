// Package models lists installed offline translation packages, the packages
// offered by the remote catalog and, when an OpenAI key is configured, the
// chat models usable by the openai hosted backend.
package models
