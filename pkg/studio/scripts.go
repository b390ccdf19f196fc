package studio

// scrollToLatestScript scrolls the last text chunk and every scrollable
// ancestor to the bottom so lazily rendered output is materialized.
const scrollToLatestScript = `(chunkSelector) => {
  const chunks = document.querySelectorAll(chunkSelector);
  if (chunks.length === 0) return;
  const last = chunks[chunks.length - 1];
  last.scrollIntoView({ block: 'end', behavior: 'instant' });
  let parent = last.parentElement;
  while (parent) {
    if (parent.scrollHeight > parent.clientHeight) {
      parent.scrollTop = parent.scrollHeight;
    }
    parent = parent.parentElement;
  }
  const editor = document.querySelector('ms-prompt-editor');
  if (editor) editor.scrollTop = editor.scrollHeight;
}`

// latestTurnTextScript returns the rendered text of the last chat turn.
const latestTurnTextScript = `(turnSelector) => {
  const turns = document.querySelectorAll(turnSelector);
  return turns.length > 0 ? turns[turns.length - 1].innerText : "";
}`

// readClipboardScript reads the page clipboard.
const readClipboardScript = `() => navigator.clipboard.readText()`
