// Package compress provides the body codecs used by the HTTP transport.
//
// A request body may be compressed with one of the codecs below; the transport sends
// the matching Content-Encoding header and decodes responses that carry the same one.
//
//   - None (format.CompressionNone): bodies are sent as-is
//   - Zstd (format.CompressionZstd): Zstandard frames, best ratio
//   - S2 (format.CompressionS2): S2 block format, fast with a moderate ratio
//   - LZ4 (format.CompressionLZ4): LZ4 block format, fastest decompression
//
// Tensor payloads of dense float data compress poorly; compression pays off for string
// tensors, sparse or quantized inputs, and slow links.
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	body, err := codec.Compress(requestBytes)
//
// All codecs are safe for concurrent use. Decompression output is capped at
// MaxDecompressedSize.
package compress
