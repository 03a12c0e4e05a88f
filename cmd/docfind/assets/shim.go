package assets

// DefaultJSShim returns the host JS shim copied verbatim to
// <output_dir>/docfind.js. It instantiates docfind_bg.wasm, writes the query
// string into the module's exported memory, calls the exported `search`
// function per spec.md §6's host-facing query contract, and reads back a
// JSON-encoded `Array<{title, category, href, body, score}>` the wasm side
// wrote to the returned pointer. The shim's search accepts a maxResults
// argument but does not use it: the exported wasm function takes only the
// query's pointer and length, so no result cap reaches the module.
func DefaultJSShim() []byte {
	return []byte(defaultJSShimSource)
}

const defaultJSShimSource = `// Generated by docfind build. Do not edit by hand.
let instance;

async function load(wasmUrl) {
  const resp = await fetch(wasmUrl);
  const bytes = await resp.arrayBuffer();
  const { instance: inst } = await WebAssembly.instantiate(bytes, {});
  instance = inst;
  return instance;
}

function writeString(str) {
  const memory = instance.exports.memory;
  const encoder = new TextEncoder();
  const bytes = encoder.encode(str);
  const ptr = instance.exports.INDEX_BASE.value + instance.exports.INDEX_LEN.value;
  new Uint8Array(memory.buffer, ptr, bytes.length).set(bytes);
  return { ptr, len: bytes.length };
}

function readString(ptr, len) {
  const memory = instance.exports.memory;
  const decoder = new TextDecoder();
  return decoder.decode(new Uint8Array(memory.buffer, ptr, len));
}

// search(needle, max_results?) -> Array<{title, category, href, body, score}>
async function search(needle, maxResults) {
  if (!instance) {
    throw new Error("docfind: call load() before search()");
  }
  const { ptr, len } = writeString(needle);
  const resultPtr = instance.exports.search(ptr, len);
  const json = readString(resultPtr, instance.exports.INDEX_LEN.value);
  return JSON.parse(json);
}

export { load, search };
`
