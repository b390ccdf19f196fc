package browser

// disableAnimationsScript removes CSS transitions and animations so the
// UI settles as soon as content is rendered.
const disableAnimationsScript = `
(() => {
  const install = () => {
    const style = document.createElement('style');
    style.innerHTML = '*, *::before, *::after { transition: none !important; animation: none !important; }';
    (document.head || document.documentElement).appendChild(style);
  };
  if (document.head || document.documentElement) {
    install();
  } else {
    document.addEventListener('DOMContentLoaded', install, { once: true });
  }
})();
`

// hideWebdriverScript hides the automation flag from page scripts.
const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// InitScripts are injected into every page before its own scripts run.
var InitScripts = []string{
	disableAnimationsScript,
	hideWebdriverScript,
}
