// Copyright 2025 Casavia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai provides embedding service implementations using OpenAI-compatible APIs.
//
// Text embeddings go through the langchaingo library; image embeddings use a
// thin HTTP client against the same /embeddings wire format with base64 image
// data URLs as input. Both work with OpenAI or OpenAI-compatible services
// (such as Ollama, LocalAI, vLLM, or infinity).
//
// # Usage
//
//	config := ai.DefaultConfig()
//	// Or customize:
//	config := ai.NewConfig(
//	    ai.WithTextHost("http://localhost:11434"),   // /v1 added automatically
//	    ai.WithImageHost("http://localhost:7997"),
//	    ai.WithTextModel("all-MiniLM-L6-v2"),
//	    ai.WithImageModel("clip-ViT-B-32"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	// Use the services
//	vec, err := provider.Embedder().EmbedText(ctx, "sample text")
//	vecs, err := provider.ImageEmbedder().EmbedImages(ctx, thumbnails)
package openai
